// Package worker keeps the spreadsheet mirror of the monthly reports in
// step with the sale and expense history.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cassa/internal/amqp"
	"cassa/internal/report"
	"cassa/internal/sheets"
)

// ReportBuilder rebuilds one month bypassing any cached copy.
type ReportBuilder interface {
	Rebuild(ctx context.Context, p report.Period) (report.Report, error)
}

type ReportWorker struct {
	reports   ReportBuilder
	publisher sheets.ReportPublisher
	now       func() time.Time
}

func NewReportWorker(reports ReportBuilder, publisher sheets.ReportPublisher) *ReportWorker {
	return &ReportWorker{reports: reports, publisher: publisher, now: time.Now}
}

// HandleEvent republishes the month the event belongs to. Returning an
// error requeues the message.
func (w *ReportWorker) HandleEvent(ctx context.Context, evt *amqp.Event) error {
	slog.InfoContext(ctx, "Processing history event",
		"component", "worker",
		"event_type", string(evt.Type),
		"id", evt.ID,
		"year", evt.Year,
		"month", evt.Month)

	if err := w.Publish(ctx, report.NewPeriod(evt.Year, evt.Month)); err != nil {
		return fmt.Errorf("handle %s %s: %w", evt.Type, evt.ID, err)
	}
	return nil
}

// Publish rebuilds the report of p and hands it to the publisher.
func (w *ReportWorker) Publish(ctx context.Context, p report.Period) error {
	r, err := w.reports.Rebuild(ctx, p)
	if err != nil {
		return fmt.Errorf("build report %s: %w", p, err)
	}
	if err := w.publisher.PublishReport(ctx, r); err != nil {
		return fmt.Errorf("publish report %s: %w", p, err)
	}
	return nil
}

// RefreshCurrent republishes the current month. It covers events lost while
// the worker was down.
func (w *ReportWorker) RefreshCurrent(ctx context.Context) error {
	now := w.now()
	return w.Publish(ctx, report.NewPeriod(now.Year(), int(now.Month())))
}

// Run refreshes the current month at startup and then every interval until
// ctx is done.
func (w *ReportWorker) Run(ctx context.Context, interval time.Duration) {
	if err := w.RefreshCurrent(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup report refresh failed", "component", "worker", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.RefreshCurrent(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic report refresh failed", "component", "worker", "error", err)
			}
		}
	}
}
