package pos

import (
	"sync"

	"cassa/internal/core"
)

// Register keeps one cart per terminal. Carts are values; the register only
// swaps the stored value under its lock, so terminals never share state.
type Register struct {
	mu    sync.Mutex
	carts map[string]Cart
}

// NewRegister returns a register with no open carts.
func NewRegister() *Register {
	return &Register{carts: make(map[string]Cart)}
}

// Cart returns the current cart of terminal, empty if none was started.
func (r *Register) Cart(terminal string) Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.carts[terminal]
}

// Apply runs fn on the terminal's cart and stores the result.
func (r *Register) Apply(terminal string, fn func(Cart) Cart) Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := fn(r.carts[terminal])
	if next.IsEmpty() {
		delete(r.carts, terminal)
	} else {
		r.carts[terminal] = next
	}
	return next
}

func (r *Register) Add(terminal string, p core.Product) Cart {
	return r.Apply(terminal, func(c Cart) Cart { return c.AddItem(p) })
}

func (r *Register) UpdateQuantity(terminal, productID string, delta int) Cart {
	return r.Apply(terminal, func(c Cart) Cart { return c.UpdateQuantity(productID, delta) })
}

func (r *Register) Remove(terminal, productID string) Cart {
	return r.Apply(terminal, func(c Cart) Cart { return c.RemoveItem(productID) })
}

func (r *Register) Clear(terminal string) {
	r.Apply(terminal, func(c Cart) Cart { return c.Clear() })
}

// Replace stores c as the terminal's cart.
func (r *Register) Replace(terminal string, c Cart) {
	r.Apply(terminal, func(Cart) Cart { return c })
}

// ClearIf empties the terminal's cart only if it still equals expected,
// leaving lines added after a checkout started untouched.
func (r *Register) ClearIf(terminal string, expected Cart) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !sameLines(r.carts[terminal], expected) {
		return false
	}
	delete(r.carts, terminal)
	return true
}

// Terminals returns the number of terminals with a non-empty cart.
func (r *Register) Terminals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

func sameLines(a, b Cart) bool {
	if len(a.lines) != len(b.lines) {
		return false
	}
	for i := range a.lines {
		x, y := a.lines[i], b.lines[i]
		if x.ProductID != y.ProductID || x.Quantity != y.Quantity || !x.UnitPrice.Equal(y.UnitPrice) {
			return false
		}
	}
	return true
}
