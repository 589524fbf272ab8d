package pos

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"cassa/internal/core"
)

// Finalizer turns a non-empty cart into a sale record. It neither persists
// the sale nor clears the cart; both are left to the caller.
type Finalizer struct {
	now   func() time.Time
	newID func() string
}

// Option customizes a Finalizer.
type Option func(*Finalizer)

// WithClock sets the source of the sale date.
func WithClock(now func() time.Time) Option {
	return func(f *Finalizer) { f.now = now }
}

// WithIDGenerator sets the sale id generator.
func WithIDGenerator(newID func() string) Option {
	return func(f *Finalizer) { f.newID = newID }
}

// NewFinalizer uses the wall clock and random UUIDs unless opts override them.
func NewFinalizer(opts ...Option) *Finalizer {
	f := &Finalizer{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Finalize builds the sale for cart. It reports false and returns the zero
// Sale when the cart is empty. The returned sale owns its own copy of the
// lines, so later cart transitions cannot reach it.
func (f *Finalizer) Finalize(cart Cart, method core.PaymentMethod, customerName *string) (core.Sale, bool) {
	if cart.IsEmpty() {
		return core.Sale{}, false
	}

	var customer *string
	if customerName != nil {
		customer = core.OptionalString(strings.TrimSpace(*customerName))
	}

	return core.Sale{
		ID:            f.newID(),
		Date:          core.DateOf(f.now()),
		Items:         cart.Lines(),
		Total:         cart.Total(),
		PaymentMethod: method,
		CustomerName:  customer,
	}, true
}
