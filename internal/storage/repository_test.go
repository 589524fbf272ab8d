package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"cassa/internal/core"
	"cassa/internal/store"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "cassa.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cassa.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	version, dirty, err := SchemaVersion(path)
	if err != nil {
		t.Fatal(err)
	}
	if version != 1 || dirty {
		t.Fatalf("version %d dirty %v", version, dirty)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run should be a no-op: %v", err)
	}
}

func TestProductsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	cat := "Lácteos"
	stock := 4
	p, err := repo.CreateProduct(ctx, core.Product{Name: "Leche", Price: dec("0.95"), Category: &cat, Stock: &stock})
	if err != nil {
		t.Fatal(err)
	}
	plain, err := repo.CreateProduct(ctx, core.Product{Name: "Pan", Price: dec("1.20")})
	if err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListProducts(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %+v %v", list, err)
	}
	if list[0].ID != p.ID || *list[0].Category != "Lácteos" || *list[0].Stock != 4 {
		t.Fatalf("first product %+v", list[0])
	}
	if list[1].Category != nil || list[1].Stock != nil {
		t.Fatalf("absent optionals must stay absent: %+v", list[1])
	}

	plain.Price = dec("1.35")
	if _, err := repo.UpdateProduct(ctx, plain); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetProduct(ctx, plain.ID)
	if err != nil || !got.Price.Equal(dec("1.35")) {
		t.Fatalf("get: %+v %v", got, err)
	}

	if err := repo.DeleteProduct(ctx, plain.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetProduct(ctx, plain.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.DeleteProduct(ctx, plain.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestSalesRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	name := "Ana"
	first := core.Sale{
		Date: core.NewDate(2026, 1, 5),
		Items: []core.CartLine{
			{ProductID: "p1", Name: "Pan", UnitPrice: dec("10"), Quantity: 2},
			{ProductID: "p2", Name: "Leche", UnitPrice: dec("5"), Quantity: 1},
		},
		Total:         dec("25"),
		PaymentMethod: core.PaymentCash,
		CustomerName:  &name,
	}
	created, err := repo.CreateSale(ctx, first)
	if err != nil || created.ID == "" {
		t.Fatalf("create: %+v %v", created, err)
	}
	second := core.Sale{
		ID:            "fixed-id",
		Date:          core.NewDate(2026, 2, 1),
		Items:         []core.CartLine{{ProductID: "p1", Name: "Pan", UnitPrice: dec("999"), Quantity: 1}},
		Total:         dec("999"),
		PaymentMethod: core.PaymentCard,
	}
	if _, err := repo.CreateSale(ctx, second); err != nil {
		t.Fatal(err)
	}

	sales, err := repo.ListSales(ctx)
	if err != nil || len(sales) != 2 {
		t.Fatalf("list: %+v %v", sales, err)
	}
	got := sales[0]
	if got.Date != core.NewDate(2026, 1, 5) || !got.Total.Equal(dec("25")) || len(got.Items) != 2 {
		t.Fatalf("unexpected sale %+v", got)
	}
	if got.Items[0].ProductID != "p1" || got.Items[1].ProductID != "p2" {
		t.Fatalf("item order lost: %+v", got.Items)
	}
	if got.CustomerName == nil || *got.CustomerName != "Ana" {
		t.Fatalf("customer %v", got.CustomerName)
	}
	if sales[1].ID != "fixed-id" || sales[1].CustomerName != nil {
		t.Fatalf("second sale %+v", sales[1])
	}

	one, err := repo.GetSale(ctx, created.ID)
	if err != nil || len(one.Items) != 2 {
		t.Fatalf("get: %+v %v", one, err)
	}

	if err := repo.DeleteSale(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	sales, _ = repo.ListSales(ctx)
	if len(sales) != 1 {
		t.Fatalf("expected one sale after delete, got %d", len(sales))
	}
	if err := repo.DeleteSale(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateSaleRejectsInvalid(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.CreateSale(context.Background(), core.Sale{
		Date: core.NewDate(2026, 1, 1), Total: dec("0"), PaymentMethod: core.PaymentCash,
	})
	if !errors.Is(err, core.ErrEmptyItems) {
		t.Fatalf("expected empty items, got %v", err)
	}
}

func TestExpensesRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	e, err := repo.CreateExpense(ctx, core.Expense{
		Description: "Luz", Amount: dec("80.10"), Category: core.CategoryUtilities, Date: core.NewDate(2026, 1, 3),
	})
	if err != nil {
		t.Fatal(err)
	}
	e.Category = core.CategoryMaintenance
	if _, err := repo.UpdateExpense(ctx, e); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetExpense(ctx, e.ID)
	if err != nil || got.Category != core.CategoryMaintenance || !got.Amount.Equal(dec("80.1")) {
		t.Fatalf("get: %+v %v", got, err)
	}

	missing := e
	missing.ID = "nope"
	if _, err := repo.UpdateExpense(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.DeleteExpense(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	list, _ := repo.ListExpenses(ctx)
	if len(list) != 0 {
		t.Fatalf("expected no expenses, got %d", len(list))
	}
}
