package services

import (
	"context"
	"fmt"
	"strings"

	"cassa/internal/amqp"
	"cassa/internal/core"
	"cassa/internal/report"
	"cassa/internal/store"
)

// ExpenseService records business expenses and announces every change.
type ExpenseService struct {
	expenses store.ExpenseStore
	events   EventPublisher
	reports  Invalidator
}

func NewExpenseService(expenses store.ExpenseStore, events EventPublisher, reports Invalidator) *ExpenseService {
	return &ExpenseService{expenses: expenses, events: events, reports: reports}
}

func (s *ExpenseService) List(ctx context.Context) ([]core.Expense, error) {
	expenses, err := s.expenses.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = ""
	e.Description = strings.TrimSpace(e.Description)
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}
	created, err := s.expenses.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.invalidate(created.Date)
	publishEvent(ctx, s.events, amqp.ExpenseCreated, created.ID, created.Date)
	return created, nil
}

// Update replaces the expense stored under e.ID. When the date moves to
// another month both months are invalidated.
func (s *ExpenseService) Update(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.Description = strings.TrimSpace(e.Description)
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}
	previous, err := s.expenses.GetExpense(ctx, e.ID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", e.ID, err)
	}
	updated, err := s.expenses.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", e.ID, err)
	}
	s.invalidate(previous.Date)
	s.invalidate(updated.Date)
	if report.PeriodOf(previous.Date) != report.PeriodOf(updated.Date) {
		publishEvent(ctx, s.events, amqp.ExpenseUpdated, updated.ID, previous.Date)
	}
	publishEvent(ctx, s.events, amqp.ExpenseUpdated, updated.ID, updated.Date)
	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	e, err := s.expenses.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("get expense %s: %w", id, err)
	}
	if err := s.expenses.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	s.invalidate(e.Date)
	publishEvent(ctx, s.events, amqp.ExpenseDeleted, id, e.Date)
	return nil
}

func (s *ExpenseService) invalidate(d core.Date) {
	if s.reports != nil {
		s.reports.Invalidate(report.PeriodOf(d))
	}
}
