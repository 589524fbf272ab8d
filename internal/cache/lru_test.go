package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestLRUGetSet(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("get a: %v %v", v, ok)
	}
	// a is now most recent; inserting c evicts b
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("size %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute).WithClock(clock.now)
	c.Set("k", "v")

	clock.t = clock.t.Add(30 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should still be fresh")
	}
	clock.t = clock.t.Add(31 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
	if c.Size() != 0 {
		t.Fatal("expired entry should be removed on read")
	}
}

func TestLRUCleanExpiredAndJanitor(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Minute).WithClock(clock.now)
	c.Set("a", 1)
	c.Set("b", 2)
	clock.t = clock.t.Add(2 * time.Minute)
	c.Set("c", 3)

	j := NewJanitor()
	j.Register(c)
	if n := j.Sweep(); n != 2 {
		t.Fatalf("swept %d", n)
	}
	if c.Size() != 1 {
		t.Fatalf("size %d", c.Size())
	}

	j.Start(time.Millisecond)
	j.Start(time.Millisecond)
	j.Stop()
	j.Stop()
}

func TestLRUDeletePrefixAndPurge(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("report:2026-01", 1)
	c.Set("report:2026-02", 2)
	c.Set("other", 3)

	if n := c.DeletePrefix("report:2026-01"); n != 1 {
		t.Fatalf("deleted %d", n)
	}
	if _, ok := c.Get("report:2026-02"); !ok {
		t.Fatal("unrelated key removed")
	}
	c.Delete("other")
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("size after purge %d", c.Size())
	}
}
