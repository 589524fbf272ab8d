package services

import (
	"context"
	"fmt"
	"strings"

	"cassa/internal/core"
	"cassa/internal/store"
)

// CatalogService manages the product catalog.
type CatalogService struct {
	products store.ProductStore
}

func NewCatalogService(products store.ProductStore) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) List(ctx context.Context) ([]core.Product, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Search returns the products whose name contains term, ignoring case. A
// blank term lists everything.
func (s *CatalogService) Search(ctx context.Context, term string) ([]core.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products, nil
	}
	out := make([]core.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (core.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return core.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (s *CatalogService) Create(ctx context.Context, p core.Product) (core.Product, error) {
	p.ID = ""
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return core.Product{}, fmt.Errorf("validate product: %w", err)
	}
	created, err := s.products.CreateProduct(ctx, p)
	if err != nil {
		return core.Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// Update replaces the product stored under p.ID.
func (s *CatalogService) Update(ctx context.Context, p core.Product) (core.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return core.Product{}, fmt.Errorf("validate product: %w", err)
	}
	updated, err := s.products.UpdateProduct(ctx, p)
	if err != nil {
		return core.Product{}, fmt.Errorf("update product %s: %w", p.ID, err)
	}
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}
