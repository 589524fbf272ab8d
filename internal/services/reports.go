package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"cassa/internal/cache"
	"cassa/internal/core"
	"cassa/internal/log"
	"cassa/internal/metrics"
	"cassa/internal/report"
	"cassa/internal/store"
)

// ReportService builds monthly reports from the stored history and caches
// the complete ones.
type ReportService struct {
	sales    store.SaleStore
	expenses store.ExpenseStore
	cache    cache.Cache[report.Report]
	topLimit int

	// generations counts invalidations per period. A build only reaches the
	// cache if no invalidation happened while it was loading.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewReportService builds a service. A nil cache disables caching; a
// non-positive topLimit falls back to report.DefaultTopProducts.
func NewReportService(sales store.SaleStore, expenses store.ExpenseStore, c cache.Cache[report.Report], topLimit int) *ReportService {
	return &ReportService{
		sales:       sales,
		expenses:    expenses,
		cache:       c,
		topLimit:    topLimit,
		generations: make(map[string]uint64),
	}
}

// Monthly returns the report of year-month. A failure to load expenses
// degrades the report to revenue-only figures instead of failing it; such
// reports are never cached.
func (s *ReportService) Monthly(ctx context.Context, year, month int) (report.Report, error) {
	p := report.NewPeriod(year, month)
	if err := p.Validate(); err != nil {
		return report.Report{}, err
	}
	if s.cache != nil {
		if r, ok := s.cache.Get(p.String()); ok {
			metrics.ReportCacheHits.Inc()
			return r, nil
		}
	}

	gen := s.generation(p)
	start := time.Now()
	r, err := s.build(ctx, p)
	if err != nil {
		return report.Report{}, err
	}
	metrics.ReportBuildDuration.Observe(time.Since(start).Seconds())
	metrics.ReportBuilds.WithLabelValues(metrics.Availability(r.ExpensesAvailable)).Inc()

	if r.ExpensesAvailable {
		s.storeIfCurrent(p, gen, r)
	}
	return r, nil
}

// Rebuild drops the cached report of p and builds it again.
func (s *ReportService) Rebuild(ctx context.Context, p report.Period) (report.Report, error) {
	s.Invalidate(p)
	return s.Monthly(ctx, p.Year, p.Month)
}

// Invalidate drops the cached report of p and discards any build of p
// that is still loading.
func (s *ReportService) Invalidate(p report.Period) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[p.String()]++
	if s.cache != nil {
		s.cache.Delete(p.String())
	}
}

func (s *ReportService) generation(p report.Period) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[p.String()]
}

// storeIfCurrent caches r unless p was invalidated after gen was read.
func (s *ReportService) storeIfCurrent(p report.Period, gen uint64, r report.Report) bool {
	if s.cache == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[p.String()] != gen {
		return false
	}
	s.cache.Set(p.String(), r)
	return true
}

func (s *ReportService) build(ctx context.Context, p report.Period) (report.Report, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentReport)

	var (
		sales       []core.Sale
		expenses    []core.Expense
		expensesErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.sales.ListSales(gctx)
		if err != nil {
			return fmt.Errorf("list sales: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		expenses, expensesErr = s.expenses.ListExpenses(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.Report{}, fmt.Errorf("build report %s: %w", p, err)
	}

	source := report.Available(expenses)
	if expensesErr != nil {
		logger.WarnContext(ctx, "Expenses unavailable, building revenue-only report",
			log.NewFields().WithPeriod(p.Year, p.Month).WithError(expensesErr).ToSlice()...)
		source = report.Unavailable()
	}
	return report.BuildTop(sales, source, p.Year, p.Month, s.topLimit), nil
}
