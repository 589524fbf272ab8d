// Package pos holds the in-progress side of a transaction: the cart, the
// per-terminal register of carts and the finalizer that turns a cart into a
// sale record.
package pos

import (
	"github.com/shopspring/decimal"

	"cassa/internal/core"
)

// Cart is an immutable ordered set of lines keyed by product id. Every
// transition returns a new Cart; the receiver is never modified, so a Cart
// can be shared freely once built.
type Cart struct {
	lines []core.CartLine
}

// NewCart returns an empty cart.
func NewCart() Cart {
	return Cart{}
}

// AddItem adds one unit of p. An existing line is incremented; otherwise a
// line is appended with the product's current name and price.
func (c Cart) AddItem(p core.Product) Cart {
	if i := c.index(p.ID); i >= 0 {
		lines := c.copyLines()
		lines[i].Quantity++
		return Cart{lines: lines}
	}
	lines := make([]core.CartLine, len(c.lines), len(c.lines)+1)
	copy(lines, c.lines)
	lines = append(lines, core.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
	})
	return Cart{lines: lines}
}

// UpdateQuantity shifts a line's quantity by delta, clamping at zero. A line
// that reaches zero is removed. Unknown ids leave the cart unchanged.
func (c Cart) UpdateQuantity(productID string, delta int) Cart {
	i := c.index(productID)
	if i < 0 {
		return c
	}
	qty := c.lines[i].Quantity + delta
	if qty <= 0 {
		return c.RemoveItem(productID)
	}
	lines := c.copyLines()
	lines[i].Quantity = qty
	return Cart{lines: lines}
}

// RemoveItem drops the line for productID if present.
func (c Cart) RemoveItem(productID string) Cart {
	i := c.index(productID)
	if i < 0 {
		return c
	}
	lines := make([]core.CartLine, 0, len(c.lines)-1)
	lines = append(lines, c.lines[:i]...)
	lines = append(lines, c.lines[i+1:]...)
	return Cart{lines: lines}
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart {
	return Cart{}
}

// Total is Σ unitPrice × quantity over all lines; zero for an empty cart.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (c Cart) Lines() []core.CartLine {
	return c.copyLines()
}

// Line returns the line for productID.
func (c Cart) Line(productID string) (core.CartLine, bool) {
	if i := c.index(productID); i >= 0 {
		return c.lines[i], true
	}
	return core.CartLine{}, false
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Len is the number of distinct products in the cart.
func (c Cart) Len() int { return len(c.lines) }

func (c Cart) index(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) copyLines() []core.CartLine {
	if len(c.lines) == 0 {
		return nil
	}
	out := make([]core.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}
