// Package memory is an in-process store backend. It is the default for
// local development and the backend used by the HTTP tests.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"cassa/internal/core"
	"cassa/internal/store"
)

type Store struct {
	mu       sync.Mutex
	products []core.Product
	sales    []core.Sale
	expenses []core.Expense
	newID    func() string
}

func New(products ...core.Product) *Store {
	s := &Store{newID: uuid.NewString}
	for _, p := range products {
		if p.ID == "" {
			p.ID = s.newID()
		}
		s.products = append(s.products, cloneProduct(p))
	}
	return s
}

// NewFromFiles seeds the catalog from <base>/seed_products.txt, one product
// per line as "name;price[;category]". Blank lines and # comments are
// skipped, as are lines that do not parse. Duplicate names keep the first.
func NewFromFiles(base string) *Store {
	return New(readProducts(filepath.Join(base, "seed_products.txt"))...)
}

var _ store.Backend = (*Store)(nil)

func (s *Store) ListProducts(_ context.Context) ([]core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Product, len(s.products))
	for i, p := range s.products {
		out[i] = cloneProduct(p)
	}
	return out, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return cloneProduct(p), nil
		}
	}
	return core.Product{}, fmt.Errorf("get product %s: %w", id, store.ErrNotFound)
}

func (s *Store) CreateProduct(_ context.Context, p core.Product) (core.Product, error) {
	if err := p.Validate(); err != nil {
		return core.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.newID()
	}
	s.products = append(s.products, cloneProduct(p))
	return cloneProduct(p), nil
}

func (s *Store) UpdateProduct(_ context.Context, p core.Product) (core.Product, error) {
	if err := p.Validate(); err != nil {
		return core.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = cloneProduct(p)
			return cloneProduct(p), nil
		}
	}
	return core.Product{}, fmt.Errorf("update product %s: %w", p.ID, store.ErrNotFound)
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete product %s: %w", id, store.ErrNotFound)
}

func (s *Store) ListSales(_ context.Context) ([]core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Sale, len(s.sales))
	for i, sale := range s.sales {
		out[i] = cloneSale(sale)
	}
	return out, nil
}

func (s *Store) GetSale(_ context.Context, id string) (core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sale := range s.sales {
		if sale.ID == id {
			return cloneSale(sale), nil
		}
	}
	return core.Sale{}, fmt.Errorf("get sale %s: %w", id, store.ErrNotFound)
}

func (s *Store) CreateSale(_ context.Context, sale core.Sale) (core.Sale, error) {
	if err := sale.Validate(); err != nil {
		return core.Sale{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sale.ID == "" {
		sale.ID = s.newID()
	}
	s.sales = append(s.sales, cloneSale(sale))
	return cloneSale(sale), nil
}

func (s *Store) DeleteSale(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sales {
		if s.sales[i].ID == id {
			s.sales = append(s.sales[:i], s.sales[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete sale %s: %w", id, store.ErrNotFound)
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...), nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, fmt.Errorf("get expense %s: %w", id, store.ErrNotFound)
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = s.newID()
	}
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == e.ID {
			s.expenses[i] = e
			return e, nil
		}
	}
	return core.Expense{}, fmt.Errorf("update expense %s: %w", e.ID, store.ErrNotFound)
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete expense %s: %w", id, store.ErrNotFound)
}

func cloneProduct(p core.Product) core.Product {
	if p.Category != nil {
		c := *p.Category
		p.Category = &c
	}
	if p.Stock != nil {
		n := *p.Stock
		p.Stock = &n
	}
	return p
}

func cloneSale(s core.Sale) core.Sale {
	s.Items = append([]core.CartLine(nil), s.Items...)
	if s.CustomerName != nil {
		c := *s.CustomerName
		s.CustomerName = &c
	}
	return s
}

func readProducts(path string) []core.Product {
	var out []core.Product
	seen := map[string]struct{}{}
	for _, line := range readLines(path) {
		parts := strings.Split(line, ";")
		if len(parts) < 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		price, err := core.ParseAmount(parts[1])
		if err != nil || name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		p := core.Product{Name: name, Price: price}
		if len(parts) > 2 {
			p.Category = core.OptionalString(parts[2])
		}
		out = append(out, p)
	}
	return out
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
