package services

import (
	"context"
	"fmt"
	"slices"

	"cassa/internal/amqp"
	"cassa/internal/core"
	"cassa/internal/log"
	"cassa/internal/metrics"
	"cassa/internal/pos"
	"cassa/internal/report"
	"cassa/internal/store"
)

// Invalidator drops whatever is cached for a period. ReportService
// implements it; writers call it after changing the history.
type Invalidator interface {
	Invalidate(p report.Period)
}

// CheckoutService drives the per-terminal carts and owns the sale history.
type CheckoutService struct {
	products  store.ProductStore
	sales     store.SaleStore
	register  *pos.Register
	finalizer *pos.Finalizer
	events    EventPublisher
	reports   Invalidator
}

func NewCheckoutService(products store.ProductStore, sales store.SaleStore, register *pos.Register,
	finalizer *pos.Finalizer, events EventPublisher, reports Invalidator) *CheckoutService {
	if register == nil {
		register = pos.NewRegister()
	}
	if finalizer == nil {
		finalizer = pos.NewFinalizer()
	}
	return &CheckoutService{
		products:  products,
		sales:     sales,
		register:  register,
		finalizer: finalizer,
		events:    events,
		reports:   reports,
	}
}

func (s *CheckoutService) Cart(terminal string) pos.Cart {
	return s.register.Cart(terminal)
}

// AddItem adds one unit of the product to the terminal's cart, at the
// catalog price of this moment.
func (s *CheckoutService) AddItem(ctx context.Context, terminal, productID string) (pos.Cart, error) {
	if productID == "" {
		return pos.Cart{}, core.ErrMissingProductID
	}
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return pos.Cart{}, fmt.Errorf("get product %s: %w", productID, err)
	}
	return s.register.Add(terminal, p), nil
}

func (s *CheckoutService) UpdateQuantity(terminal, productID string, delta int) pos.Cart {
	return s.register.UpdateQuantity(terminal, productID, delta)
}

func (s *CheckoutService) RemoveItem(terminal, productID string) pos.Cart {
	return s.register.Remove(terminal, productID)
}

func (s *CheckoutService) ClearCart(terminal string) {
	s.register.Clear(terminal)
}

// Checkout finalizes the terminal's cart, stores the sale and empties the
// cart. An empty cart is declined: ok is false and nothing changes.
func (s *CheckoutService) Checkout(ctx context.Context, terminal string, method core.PaymentMethod, customerName *string) (core.Sale, bool, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentCheckout)
	if !method.Valid() {
		return core.Sale{}, false, core.ErrInvalidPayment
	}

	cart := s.register.Cart(terminal)
	sale, ok := s.finalizer.Finalize(cart, method, customerName)
	if !ok {
		metrics.Checkouts.WithLabelValues("declined").Inc()
		logger.DebugContext(ctx, "Checkout declined, cart is empty", log.FieldTerminal, terminal)
		return core.Sale{}, false, nil
	}

	created, err := s.sales.CreateSale(ctx, sale)
	if err != nil {
		metrics.Checkouts.WithLabelValues("failed").Inc()
		return core.Sale{}, false, fmt.Errorf("save sale: %w", err)
	}

	// A cart changed while the sale was being stored stays as it is.
	if !s.register.ClearIf(terminal, cart) {
		logger.WarnContext(ctx, "Cart changed during checkout, keeping it", log.FieldTerminal, terminal)
	}
	s.invalidate(created.Date)
	publishEvent(ctx, s.events, amqp.SaleCreated, created.ID, created.Date)
	metrics.Checkouts.WithLabelValues("finalized").Inc()

	fields := log.NewFields().
		WithOperation(log.OpCheckout).
		WithSale(created.ID, core.FormatAmount(created.Total), string(created.PaymentMethod), created.ItemCount())
	logger.InfoContext(ctx, "Sale finalized", append(fields.ToSlice(), log.FieldTerminal, terminal)...)
	return created, true, nil
}

// ImportSale stores a sale assembled outside the register, such as one
// recorded on another device.
func (s *CheckoutService) ImportSale(ctx context.Context, sale core.Sale) (core.Sale, error) {
	sale.CustomerName = trimOptional(sale.CustomerName)
	if err := sale.Validate(); err != nil {
		return core.Sale{}, fmt.Errorf("validate sale: %w", err)
	}
	created, err := s.sales.CreateSale(ctx, sale)
	if err != nil {
		return core.Sale{}, fmt.Errorf("save sale: %w", err)
	}
	s.invalidate(created.Date)
	publishEvent(ctx, s.events, amqp.SaleCreated, created.ID, created.Date)
	return created, nil
}

// DeleteSale removes a sale record as a whole.
func (s *CheckoutService) DeleteSale(ctx context.Context, id string) error {
	sale, err := s.sales.GetSale(ctx, id)
	if err != nil {
		return fmt.Errorf("get sale %s: %w", id, err)
	}
	if err := s.sales.DeleteSale(ctx, id); err != nil {
		return fmt.Errorf("delete sale %s: %w", id, err)
	}
	metrics.SalesDeleted.Inc()
	s.invalidate(sale.Date)
	publishEvent(ctx, s.events, amqp.SaleDeleted, id, sale.Date)
	return nil
}

// HistoryFilter narrows the sale history. Nil fields match everything.
type HistoryFilter struct {
	Day    *core.Date
	Period *report.Period
}

// History lists the stored sales matching f, newest date first. Sales of
// the same day keep their stored order.
func (s *CheckoutService) History(ctx context.Context, f HistoryFilter) ([]core.Sale, error) {
	sales, err := s.sales.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if f.Period != nil {
		sales = report.FilterPeriod(sales, f.Period.Year, f.Period.Month)
	}
	if f.Day != nil {
		sales = report.FilterDay(sales, *f.Day)
	}
	slices.SortStableFunc(sales, func(a, b core.Sale) int {
		return b.Date.Compare(a.Date)
	})
	return sales, nil
}

func (s *CheckoutService) invalidate(d core.Date) {
	if s.reports != nil {
		s.reports.Invalidate(report.PeriodOf(d))
	}
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	return core.OptionalString(*v)
}
