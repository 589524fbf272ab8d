package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cassa/internal/amqp"
	"cassa/internal/cache"
	"cassa/internal/core"
	"cassa/internal/pos"
	"cassa/internal/report"
	"cassa/internal/store"
	"cassa/internal/store/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt *amqp.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *evt)
	return nil
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type recordingInvalidator struct {
	periods []report.Period
}

func (r *recordingInvalidator) Invalidate(p report.Period) {
	r.periods = append(r.periods, p)
}

type failingSales struct {
	store.SaleStore
}

func (failingSales) CreateSale(context.Context, core.Sale) (core.Sale, error) {
	return core.Sale{}, errors.New("disk full")
}

type flakyExpenses struct {
	store.ExpenseStore
	failures int
	calls    int
}

func (f *flakyExpenses) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("expenses offline")
	}
	return f.ExpenseStore.ListExpenses(ctx)
}

// gatedSales holds the first ListSales call open after reading the
// history, until release is closed.
type gatedSales struct {
	store.SaleStore
	once    sync.Once
	listed  chan struct{}
	release chan struct{}
}

func newGatedSales(inner store.SaleStore) *gatedSales {
	return &gatedSales{SaleStore: inner, listed: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedSales) ListSales(ctx context.Context) ([]core.Sale, error) {
	sales, err := g.SaleStore.ListSales(ctx)
	g.once.Do(func() {
		close(g.listed)
		<-g.release
	})
	return sales, err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixedFinalizer(d time.Time) *pos.Finalizer {
	return pos.NewFinalizer(pos.WithClock(func() time.Time { return d }))
}

func seededStore() *memory.Store {
	return memory.New(
		core.Product{ID: "p1", Name: "Pan", Price: dec("10")},
		core.Product{ID: "p2", Name: "Leche", Price: dec("5")},
		core.Product{ID: "p3", Name: "Pan integral", Price: dec("12")},
	)
}

func TestCatalogSearch(t *testing.T) {
	svc := NewCatalogService(seededStore())
	ctx := context.Background()

	tests := []struct {
		term string
		want int
	}{
		{"", 3},
		{"pan", 2},
		{"  LECHE ", 1},
		{"queso", 0},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := svc.Search(ctx, tt.term)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Fatalf("Search(%q) = %d products, want %d", tt.term, len(got), tt.want)
			}
		})
	}
}

func TestCatalogCreateValidates(t *testing.T) {
	svc := NewCatalogService(seededStore())
	_, err := svc.Create(context.Background(), core.Product{Name: "  ", Price: dec("1")})
	if !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected empty name error, got %v", err)
	}
	p, err := svc.Create(context.Background(), core.Product{Name: " Queso ", Price: dec("7.5")})
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == "" || p.Name != "Queso" {
		t.Fatalf("unexpected product %+v", p)
	}
}

func TestCheckoutFinalizesAndClearsCart(t *testing.T) {
	ctx := context.Background()
	st := seededStore()
	events := &recordingPublisher{}
	inv := &recordingInvalidator{}
	svc := NewCheckoutService(st, st, pos.NewRegister(),
		fixedFinalizer(time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)), events, inv)

	for _, id := range []string{"p1", "p1", "p2"} {
		if _, err := svc.AddItem(ctx, "t1", id); err != nil {
			t.Fatal(err)
		}
	}
	if got := svc.Cart("t1").Total(); !got.Equal(dec("25")) {
		t.Fatalf("cart total %s", got)
	}

	sale, ok, err := svc.Checkout(ctx, "t1", core.PaymentCash, core.OptionalString(" Ana "))
	if err != nil || !ok {
		t.Fatalf("checkout failed: ok=%v err=%v", ok, err)
	}
	if !sale.Total.Equal(dec("25")) || len(sale.Items) != 2 {
		t.Fatalf("unexpected sale %+v", sale)
	}
	if sale.CustomerName == nil || *sale.CustomerName != "Ana" {
		t.Fatalf("customer name %v", sale.CustomerName)
	}
	if sale.Date != core.NewDate(2026, 1, 5) {
		t.Fatalf("sale date %v", sale.Date)
	}
	if !svc.Cart("t1").IsEmpty() {
		t.Fatal("cart should be cleared after checkout")
	}
	if got := events.types(); len(got) != 1 || got[0] != amqp.SaleCreated {
		t.Fatalf("events %v", got)
	}
	if len(inv.periods) != 1 || inv.periods[0] != report.NewPeriod(2026, 1) {
		t.Fatalf("invalidated %v", inv.periods)
	}

	history, err := svc.History(ctx, HistoryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].ID != sale.ID {
		t.Fatalf("history %+v", history)
	}
}

func TestCheckoutDeclinesEmptyCart(t *testing.T) {
	ctx := context.Background()
	st := seededStore()
	events := &recordingPublisher{}
	svc := NewCheckoutService(st, st, nil, nil, events, nil)

	sale, ok, err := svc.Checkout(ctx, "t1", core.PaymentCard, nil)
	if err != nil || ok {
		t.Fatalf("expected declined checkout, got ok=%v err=%v", ok, err)
	}
	if sale.ID != "" {
		t.Fatalf("declined checkout produced %+v", sale)
	}
	sales, _ := st.ListSales(ctx)
	if len(sales) != 0 || len(events.types()) != 0 {
		t.Fatal("declined checkout must not store or publish")
	}
}

func TestCheckoutRejectsInvalidPayment(t *testing.T) {
	st := seededStore()
	svc := NewCheckoutService(st, st, nil, nil, nil, nil)
	if _, err := svc.AddItem(context.Background(), "t1", "p1"); err != nil {
		t.Fatal(err)
	}
	_, _, err := svc.Checkout(context.Background(), "t1", core.PaymentMethod("crypto"), nil)
	if !errors.Is(err, core.ErrInvalidPayment) {
		t.Fatalf("expected invalid payment, got %v", err)
	}
	if svc.Cart("t1").IsEmpty() {
		t.Fatal("cart must survive a rejected checkout")
	}
}

func TestCheckoutStoreFailureKeepsCart(t *testing.T) {
	st := seededStore()
	events := &recordingPublisher{}
	svc := NewCheckoutService(st, failingSales{st}, nil, nil, events, nil)
	ctx := context.Background()
	if _, err := svc.AddItem(ctx, "t1", "p2"); err != nil {
		t.Fatal(err)
	}
	_, ok, err := svc.Checkout(ctx, "t1", core.PaymentCash, nil)
	if err == nil || ok {
		t.Fatalf("expected failure, got ok=%v err=%v", ok, err)
	}
	if svc.Cart("t1").Len() != 1 {
		t.Fatal("cart must be kept when the sale cannot be stored")
	}
	if len(events.types()) != 0 {
		t.Fatal("no event expected on failure")
	}
}

func TestAddUnknownProduct(t *testing.T) {
	st := seededStore()
	svc := NewCheckoutService(st, st, nil, nil, nil, nil)
	_, err := svc.AddItem(context.Background(), "t1", "nope")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCheckoutPublishFailureIsNotFatal(t *testing.T) {
	st := seededStore()
	svc := NewCheckoutService(st, st, nil, nil, &recordingPublisher{err: errors.New("broker down")}, nil)
	ctx := context.Background()
	if _, err := svc.AddItem(ctx, "t1", "p1"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := svc.Checkout(ctx, "t1", core.PaymentCash, nil); err != nil || !ok {
		t.Fatalf("publish failure must not fail checkout: ok=%v err=%v", ok, err)
	}
}

func importSale(t *testing.T, svc *CheckoutService, id string, d core.Date, total string) {
	t.Helper()
	_, err := svc.ImportSale(context.Background(), core.Sale{
		ID:            id,
		Date:          d,
		Items:         []core.CartLine{{ProductID: "p1", Name: "Pan", UnitPrice: dec(total), Quantity: 1}},
		Total:         dec(total),
		PaymentMethod: core.PaymentCash,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestHistoryFiltersAndOrders(t *testing.T) {
	st := seededStore()
	svc := NewCheckoutService(st, st, nil, nil, nil, nil)
	importSale(t, svc, "a", core.NewDate(2026, 1, 5), "100")
	importSale(t, svc, "b", core.NewDate(2026, 1, 20), "50")
	importSale(t, svc, "c", core.NewDate(2026, 2, 1), "999")
	importSale(t, svc, "d", core.NewDate(2026, 1, 20), "10")

	jan := report.NewPeriod(2026, 1)
	day := core.NewDate(2026, 1, 20)
	tests := []struct {
		name   string
		filter HistoryFilter
		want   []string
	}{
		{"all", HistoryFilter{}, []string{"c", "b", "d", "a"}},
		{"period", HistoryFilter{Period: &jan}, []string{"b", "d", "a"}},
		{"day", HistoryFilter{Day: &day}, []string{"b", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.History(context.Background(), tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sales, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("position %d: got %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestImportSaleRejectsMismatchedTotal(t *testing.T) {
	st := seededStore()
	svc := NewCheckoutService(st, st, nil, nil, nil, nil)
	_, err := svc.ImportSale(context.Background(), core.Sale{
		Date:          core.NewDate(2026, 1, 5),
		Items:         []core.CartLine{{ProductID: "p1", Name: "Pan", UnitPrice: dec("10"), Quantity: 2}},
		Total:         dec("15"),
		PaymentMethod: core.PaymentCash,
	})
	if !errors.Is(err, core.ErrTotalMismatch) {
		t.Fatalf("expected total mismatch, got %v", err)
	}
}

func TestDeletedSaleLeavesReport(t *testing.T) {
	ctx := context.Background()
	st := seededStore()
	reports := NewReportService(st, st, cache.NewLRUCache[report.Report](4, time.Minute), 10)
	events := &recordingPublisher{}
	svc := NewCheckoutService(st, st, nil, nil, events, reports)
	importSale(t, svc, "a", core.NewDate(2026, 1, 5), "100")
	importSale(t, svc, "b", core.NewDate(2026, 1, 20), "50")

	r, err := reports.Monthly(ctx, 2026, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !r.KPIs.TotalRevenue.Equal(dec("150")) {
		t.Fatalf("revenue %s", r.KPIs.TotalRevenue)
	}

	if err := svc.DeleteSale(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	r, err = reports.Monthly(ctx, 2026, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !r.KPIs.TotalRevenue.Equal(dec("50")) || r.KPIs.TransactionCount != 1 {
		t.Fatalf("deleted sale still counted: %+v", r.KPIs)
	}
	if got := events.types(); got[len(got)-1] != amqp.SaleDeleted {
		t.Fatalf("events %v", got)
	}
	if err := svc.DeleteSale(ctx, "a"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestDeleteDuringReportBuildIsNotCached(t *testing.T) {
	ctx := context.Background()
	st := seededStore()
	gated := newGatedSales(st)
	reports := NewReportService(gated, st, cache.NewLRUCache[report.Report](4, time.Minute), 10)
	svc := NewCheckoutService(st, st, nil, nil, nil, reports)
	importSale(t, svc, "a", core.NewDate(2026, 1, 5), "100")
	importSale(t, svc, "b", core.NewDate(2026, 1, 20), "50")

	done := make(chan error, 1)
	go func() {
		_, err := reports.Monthly(ctx, 2026, 1)
		done <- err
	}()

	<-gated.listed
	if err := svc.DeleteSale(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	close(gated.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	r, err := reports.Monthly(ctx, 2026, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !r.KPIs.TotalRevenue.Equal(dec("50")) || r.KPIs.TransactionCount != 1 {
		t.Fatalf("deleted sale reappears: revenue=%s count=%d", r.KPIs.TotalRevenue, r.KPIs.TransactionCount)
	}
}

func TestDegradedReportIsNotCached(t *testing.T) {
	ctx := context.Background()
	st := seededStore()
	expenses := &flakyExpenses{ExpenseStore: st, failures: 1}
	reports := NewReportService(st, expenses, cache.NewLRUCache[report.Report](4, time.Minute), 0)

	if _, err := st.CreateExpense(ctx, core.Expense{
		Description: "Alquiler", Amount: dec("40"), Category: core.CategoryRent, Date: core.NewDate(2026, 1, 1),
	}); err != nil {
		t.Fatal(err)
	}

	first, err := reports.Monthly(ctx, 2026, 1)
	if err != nil {
		t.Fatal(err)
	}
	if first.ExpensesAvailable || first.KPIs.NetProfit.Available {
		t.Fatalf("expected degraded report, got %+v", first.KPIs)
	}
	if first.KPIs.NetProfit.Display() != report.NotAvailable {
		t.Fatalf("net profit display %q", first.KPIs.NetProfit.Display())
	}

	second, err := reports.Monthly(ctx, 2026, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !second.ExpensesAvailable || !second.KPIs.TotalExpenses.Value.Equal(dec("40")) {
		t.Fatalf("expected complete report, got %+v", second.KPIs)
	}

	if _, err := reports.Monthly(ctx, 2026, 1); err != nil {
		t.Fatal(err)
	}
	if expenses.calls != 2 {
		t.Fatalf("complete report should be served from cache, expense loads = %d", expenses.calls)
	}
}

func TestMonthlyRejectsInvalidPeriod(t *testing.T) {
	st := seededStore()
	reports := NewReportService(st, st, nil, 0)
	if _, err := reports.Monthly(context.Background(), 2026, 13); !errors.Is(err, report.ErrInvalidPeriod) {
		t.Fatalf("expected invalid period, got %v", err)
	}
}

func TestExpenseLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	st := seededStore()
	events := &recordingPublisher{}
	inv := &recordingInvalidator{}
	svc := NewExpenseService(st, events, inv)

	created, err := svc.Create(ctx, core.Expense{
		Description: "Luz", Amount: dec("30"), Category: core.CategoryUtilities, Date: core.NewDate(2026, 1, 10),
	})
	if err != nil {
		t.Fatal(err)
	}

	moved := created
	moved.Date = core.NewDate(2026, 2, 3)
	if _, err := svc.Update(ctx, moved); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}

	want := []amqp.EventType{amqp.ExpenseCreated, amqp.ExpenseUpdated, amqp.ExpenseUpdated, amqp.ExpenseDeleted}
	got := events.types()
	if len(got) != len(want) {
		t.Fatalf("events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events %v, want %v", got, want)
		}
	}
	if events.events[1].Month != 1 || events.events[2].Month != 2 {
		t.Fatalf("update should announce both months: %+v", events.events[1:3])
	}

	bad := core.Expense{Description: "x", Amount: dec("-1"), Category: core.CategoryRent, Date: core.NewDate(2026, 1, 1)}
	if _, err := svc.Create(ctx, bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}
