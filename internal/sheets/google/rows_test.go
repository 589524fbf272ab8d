package google

import (
	"testing"

	"github.com/shopspring/decimal"

	"cassa/internal/core"
	"cassa/internal/report"
)

func TestSheetTitle(t *testing.T) {
	p := report.NewPeriod(2026, 3)
	if got := sheetTitle("Report", p); got != "Report 2026-03" {
		t.Fatalf("got %q", got)
	}
	if got := sheetTitle("", p); got != "2026-03" {
		t.Fatalf("got %q", got)
	}
}

func findRow(rows [][]any, label string) []any {
	for _, r := range rows {
		if len(r) > 0 && r[0] == label {
			return r
		}
	}
	return nil
}

func TestReportRows(t *testing.T) {
	sales := []core.Sale{{
		ID:   "s1",
		Date: core.NewDate(2026, 1, 5),
		Items: []core.CartLine{
			{ProductID: "p1", Name: "Pan", UnitPrice: decimal.RequireFromString("10"), Quantity: 2},
		},
		Total:         decimal.RequireFromString("20"),
		PaymentMethod: core.PaymentCard,
	}}
	expenses := []core.Expense{{
		ID: "e1", Description: "Luz", Amount: decimal.RequireFromString("5"),
		Category: core.CategoryUtilities, Date: core.NewDate(2026, 1, 2),
	}}

	rows := reportRows(report.Build(sales, report.Available(expenses), 2026, 1))
	if r := findRow(rows, "Net profit"); r == nil || r[1] != "15.00" {
		t.Fatalf("net profit row %v", r)
	}
	if r := findRow(rows, "Pan"); r == nil || r[1] != 2 || r[2] != "20.00" {
		t.Fatalf("product row %v", r)
	}
	if r := findRow(rows, "Card"); r == nil || r[1] != 1 {
		t.Fatalf("payment row %v", r)
	}
	if r := findRow(rows, "Utilities"); r == nil || r[1] != "5.00" {
		t.Fatalf("category row %v", r)
	}

	degraded := reportRows(report.Build(sales, report.Unavailable(), 2026, 1))
	if r := findRow(degraded, "Net profit"); r == nil || r[1] != report.NotAvailable {
		t.Fatalf("degraded net profit row %v", r)
	}
	if r := findRow(degraded, "Total expenses"); r == nil || r[1] != report.NotAvailable {
		t.Fatalf("degraded expenses row %v", r)
	}
}
