// Package memory is a ReportPublisher that keeps the latest report per
// period in process. The worker falls back to it when no spreadsheet is
// configured.
package memory

import (
	"context"
	"sync"

	"cassa/internal/report"
	"cassa/internal/sheets"
)

type Publisher struct {
	mu        sync.Mutex
	reports   map[report.Period]report.Report
	published int
}

var _ sheets.ReportPublisher = (*Publisher)(nil)

func New() *Publisher {
	return &Publisher{reports: make(map[report.Period]report.Report)}
}

func (p *Publisher) PublishReport(_ context.Context, r report.Report) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports[r.Period] = r
	p.published++
	return nil
}

// Report returns the last report published for period.
func (p *Publisher) Report(period report.Period) (report.Report, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.reports[period]
	return r, ok
}

// Published is the number of PublishReport calls so far.
func (p *Publisher) Published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published
}
