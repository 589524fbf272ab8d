// Package storage is the SQLite store backend.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"cassa/internal/core"
	"cassa/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db    *sql.DB
	newID func() string
}

var _ store.Backend = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, newID: uuid.NewString}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func notFound(op, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", op, id, store.ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, id, err)
}

func checkAffected(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, store.ErrNotFound)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int64)
	return &n
}

// Products

const productColumns = `id, name, price, category, stock`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (core.Product, error) {
	var (
		p        core.Product
		category sql.NullString
		stock    sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &category, &stock); err != nil {
		return core.Product{}, err
	}
	p.Category = stringPtr(category)
	p.Stock = intPtr(stock)
	return p, nil
}

func (r *SQLiteRepository) ListProducts(ctx context.Context) ([]core.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]core.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetProduct(ctx context.Context, id string) (core.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		return core.Product{}, notFound("get product", id, err)
	}
	return p, nil
}

func (r *SQLiteRepository) CreateProduct(ctx context.Context, p core.Product) (core.Product, error) {
	if err := p.Validate(); err != nil {
		return core.Product{}, err
	}
	if p.ID == "" {
		p.ID = r.newID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, name, price, category, stock) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Price, nullString(p.Category), nullInt(p.Stock))
	if err != nil {
		return core.Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) UpdateProduct(ctx context.Context, p core.Product) (core.Product, error) {
	if err := p.Validate(); err != nil {
		return core.Product{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = ?, price = ?, category = ?, stock = ? WHERE id = ?`,
		p.Name, p.Price, nullString(p.Category), nullInt(p.Stock), p.ID)
	if err != nil {
		return core.Product{}, fmt.Errorf("update product %s: %w", p.ID, err)
	}
	if err := checkAffected(res, "update product", p.ID); err != nil {
		return core.Product{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return checkAffected(res, "delete product", id)
}

// Sales

const saleColumns = `id, year, month, day, total, payment_method, customer_name`

func scanSale(row scanner) (core.Sale, error) {
	var (
		s        core.Sale
		method   string
		customer sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Date.Year, &s.Date.Month, &s.Date.Day, &s.Total, &method, &customer); err != nil {
		return core.Sale{}, err
	}
	s.PaymentMethod = core.PaymentMethod(method)
	s.CustomerName = stringPtr(customer)
	return s, nil
}

func (r *SQLiteRepository) ListSales(ctx context.Context) ([]core.Sale, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	sales := make([]core.Sale, 0)
	index := make(map[string]int)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		index[s.ID] = len(sales)
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list sales: %w", err)
	}
	rows.Close()

	items, err := r.db.QueryContext(ctx,
		`SELECT sale_id, product_id, name, unit_price, quantity FROM sale_items ORDER BY sale_id, position`)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer items.Close()
	for items.Next() {
		var (
			saleID string
			line   core.CartLine
		)
		if err := items.Scan(&saleID, &line.ProductID, &line.Name, &line.UnitPrice, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		if i, ok := index[saleID]; ok {
			sales[i].Items = append(sales[i].Items, line)
		}
	}
	return sales, items.Err()
}

func (r *SQLiteRepository) GetSale(ctx context.Context, id string) (core.Sale, error) {
	s, err := scanSale(r.db.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id))
	if err != nil {
		return core.Sale{}, notFound("get sale", id, err)
	}
	items, err := r.saleItems(ctx, id)
	if err != nil {
		return core.Sale{}, err
	}
	s.Items = items
	return s, nil
}

func (r *SQLiteRepository) saleItems(ctx context.Context, saleID string) ([]core.CartLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, name, unit_price, quantity FROM sale_items WHERE sale_id = ? ORDER BY position`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list items of sale %s: %w", saleID, err)
	}
	defer rows.Close()
	var out []core.CartLine
	for rows.Next() {
		var line core.CartLine
		if err := rows.Scan(&line.ProductID, &line.Name, &line.UnitPrice, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

// CreateSale writes the sale and its lines in one transaction.
func (r *SQLiteRepository) CreateSale(ctx context.Context, s core.Sale) (core.Sale, error) {
	if err := s.Validate(); err != nil {
		return core.Sale{}, err
	}
	if s.ID == "" {
		s.ID = r.newID()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Sale{}, fmt.Errorf("begin sale tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sales (id, year, month, day, total, payment_method, customer_name) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Date.Year, s.Date.Month, s.Date.Day, s.Total, string(s.PaymentMethod), nullString(s.CustomerName))
	if err != nil {
		return core.Sale{}, fmt.Errorf("create sale: %w", err)
	}
	for i, line := range s.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sale_items (sale_id, position, product_id, name, unit_price, quantity) VALUES (?, ?, ?, ?, ?, ?)`,
			s.ID, i, line.ProductID, line.Name, line.UnitPrice, line.Quantity)
		if err != nil {
			return core.Sale{}, fmt.Errorf("create sale item %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return core.Sale{}, fmt.Errorf("commit sale: %w", err)
	}

	slog.DebugContext(ctx, "Sale saved to SQLite",
		"sale_id", s.ID,
		"items", len(s.Items),
		"total", s.Total.String())
	return s, nil
}

func (r *SQLiteRepository) DeleteSale(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = ?`, id); err != nil {
		return fmt.Errorf("delete items of sale %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sale %s: %w", id, err)
	}
	if err := checkAffected(res, "delete sale", id); err != nil {
		return err
	}
	return tx.Commit()
}

// Expenses

const expenseColumns = `id, description, amount, category, year, month, day`

func scanExpense(row scanner) (core.Expense, error) {
	var (
		e        core.Expense
		category string
	)
	if err := row.Scan(&e.ID, &e.Description, &e.Amount, &category, &e.Date.Year, &e.Date.Month, &e.Date.Day); err != nil {
		return core.Expense{}, err
	}
	e.Category = core.ExpenseCategory(category)
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if err != nil {
		return core.Expense{}, notFound("get expense", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.ID == "" {
		e.ID = r.newID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount, category, year, month, day) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Description, e.Amount, string(e.Category), e.Date.Year, e.Date.Month, e.Date.Day)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET description = ?, amount = ?, category = ?, year = ?, month = ?, day = ? WHERE id = ?`,
		e.Description, e.Amount, string(e.Category), e.Date.Year, e.Date.Month, e.Date.Day, e.ID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", e.ID, err)
	}
	if err := checkAffected(res, "update expense", e.ID); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	return checkAffected(res, "delete expense", id)
}
