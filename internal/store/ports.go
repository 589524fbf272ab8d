// Package store declares the persistence ports used by the services. The
// core never talks to a store directly.
package store

import (
	"context"
	"errors"

	"cassa/internal/core"
)

var ErrNotFound = errors.New("not found")

type (
	ProductStore interface {
		ListProducts(ctx context.Context) ([]core.Product, error)
		GetProduct(ctx context.Context, id string) (core.Product, error)
		// CreateProduct stores p, assigning an id when p.ID is empty.
		CreateProduct(ctx context.Context, p core.Product) (core.Product, error)
		// UpdateProduct replaces the product with the same id.
		UpdateProduct(ctx context.Context, p core.Product) (core.Product, error)
		DeleteProduct(ctx context.Context, id string) error
	}

	// SaleStore holds the immutable sale history. Sales are only ever
	// created or deleted as whole records.
	SaleStore interface {
		ListSales(ctx context.Context) ([]core.Sale, error)
		GetSale(ctx context.Context, id string) (core.Sale, error)
		CreateSale(ctx context.Context, s core.Sale) (core.Sale, error)
		DeleteSale(ctx context.Context, id string) error
	}

	ExpenseStore interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		GetExpense(ctx context.Context, id string) (core.Expense, error)
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	// Backend bundles every port a deployment needs.
	Backend interface {
		ProductStore
		SaleStore
		ExpenseStore
	}
)
