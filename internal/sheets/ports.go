// Package sheets mirrors built reports into an external spreadsheet.
package sheets

import (
	"context"

	"cassa/internal/report"
)

// ReportPublisher writes a monthly report to its destination, replacing
// whatever was previously written for the same period.
type ReportPublisher interface {
	PublishReport(ctx context.Context, r report.Report) error
}
