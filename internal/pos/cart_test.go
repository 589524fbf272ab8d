package pos

import (
	"testing"

	"github.com/shopspring/decimal"

	"cassa/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func product(id, price string) core.Product {
	return core.Product{ID: id, Name: "Product " + id, Price: dec(price)}
}

func TestCartAddItem(t *testing.T) {
	p1 := product("p1", "10")
	p2 := product("p2", "5")

	c := NewCart().AddItem(p1).AddItem(p1).AddItem(p2)

	if c.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d", c.Len())
	}
	lines := c.Lines()
	if lines[0].ProductID != "p1" || lines[0].Quantity != 2 {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	if lines[1].ProductID != "p2" || lines[1].Quantity != 1 {
		t.Fatalf("unexpected second line %+v", lines[1])
	}
	if !c.Total().Equal(dec("25")) {
		t.Fatalf("total got %s want 25", c.Total())
	}
}

func TestCartTransitionsDoNotMutateReceiver(t *testing.T) {
	base := NewCart().AddItem(product("p1", "10"))

	_ = base.AddItem(product("p1", "10"))
	_ = base.UpdateQuantity("p1", 5)
	_ = base.RemoveItem("p1")
	_ = base.Clear()

	line, ok := base.Line("p1")
	if !ok || line.Quantity != 1 {
		t.Fatalf("receiver changed: %+v", base.Lines())
	}

	lines := base.Lines()
	lines[0].Quantity = 99
	if l, _ := base.Line("p1"); l.Quantity != 1 {
		t.Fatal("Lines must return a copy")
	}
}

func TestCartPriceSnapshotAtAdd(t *testing.T) {
	p := product("p1", "10")
	c := NewCart().AddItem(p)
	p.Price = dec("12")
	c = c.AddItem(p)

	line, _ := c.Line("p1")
	if !line.UnitPrice.Equal(dec("10")) || line.Quantity != 2 {
		t.Fatalf("unexpected line %+v", line)
	}
}

func TestCartUpdateQuantity(t *testing.T) {
	c := NewCart().AddItem(product("p1", "10")).AddItem(product("p2", "5"))

	tests := []struct {
		name      string
		id        string
		delta     int
		wantLen   int
		wantQty   int
		wantTotal string
	}{
		{"increment", "p1", 2, 2, 3, "35"},
		{"to zero removes", "p1", -1, 1, 0, "5"},
		{"below zero clamps and removes", "p1", -10, 1, 0, "5"},
		{"unknown id", "nope", 3, 2, 1, "15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.UpdateQuantity(tt.id, tt.delta)
			if got.Len() != tt.wantLen {
				t.Fatalf("len got %d want %d", got.Len(), tt.wantLen)
			}
			if line, ok := got.Line("p1"); ok && line.Quantity != tt.wantQty {
				t.Fatalf("qty got %d want %d", line.Quantity, tt.wantQty)
			} else if !ok && tt.wantQty != 0 {
				t.Fatal("line unexpectedly removed")
			}
			if !got.Total().Equal(dec(tt.wantTotal)) {
				t.Fatalf("total got %s want %s", got.Total(), tt.wantTotal)
			}
		})
	}
}

func TestCartRemoveItem(t *testing.T) {
	c := NewCart().AddItem(product("p1", "10")).AddItem(product("p2", "5")).AddItem(product("p3", "1"))

	c = c.RemoveItem("p2")
	if c.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d", c.Len())
	}
	lines := c.Lines()
	if lines[0].ProductID != "p1" || lines[1].ProductID != "p3" {
		t.Fatalf("order not preserved: %+v", lines)
	}
	if same := c.RemoveItem("p2"); same.Len() != 2 {
		t.Fatal("removing unknown id should be a no-op")
	}
}

func TestCartEmpty(t *testing.T) {
	c := NewCart()
	if !c.IsEmpty() || !c.Total().IsZero() || len(c.Lines()) != 0 {
		t.Fatal("new cart should be empty with zero total")
	}
	c = c.AddItem(product("p1", "3")).Clear()
	if !c.IsEmpty() {
		t.Fatal("clear should empty the cart")
	}
}

func TestCartTotalMatchesLines(t *testing.T) {
	ops := []func(Cart) Cart{
		func(c Cart) Cart { return c.AddItem(product("a", "1.10")) },
		func(c Cart) Cart { return c.AddItem(product("b", "2.25")) },
		func(c Cart) Cart { return c.UpdateQuantity("a", 4) },
		func(c Cart) Cart { return c.AddItem(product("c", "0.99")) },
		func(c Cart) Cart { return c.UpdateQuantity("b", -1) },
		func(c Cart) Cart { return c.RemoveItem("c") },
		func(c Cart) Cart { return c.AddItem(product("b", "2.25")) },
	}
	c := NewCart()
	for i, op := range ops {
		c = op(c)
		sum := decimal.Zero
		for _, l := range c.Lines() {
			if l.Quantity <= 0 {
				t.Fatalf("step %d: non-positive quantity %+v", i, l)
			}
			sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		if !c.Total().Equal(sum) {
			t.Fatalf("step %d: total %s != sum %s", i, c.Total(), sum)
		}
	}
}
