package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"cassa/internal/core"
	"cassa/internal/report"
)

func sampleSales() []core.Sale {
	return []core.Sale{
		{
			ID:   "s1",
			Date: core.NewDate(2026, 3, 2),
			Items: []core.CartLine{
				{ProductID: "p1", Name: "Pan", UnitPrice: decimal.NewFromInt(10), Quantity: 2},
			},
			Total:         decimal.NewFromInt(20),
			PaymentMethod: core.PaymentCash,
		},
		{
			ID:   "s2",
			Date: core.NewDate(2026, 3, 9),
			Items: []core.CartLine{
				{ProductID: "p2", Name: "Leche", UnitPrice: decimal.NewFromInt(5), Quantity: 1},
			},
			Total:         decimal.NewFromInt(5),
			PaymentMethod: core.PaymentCard,
		},
	}
}

func TestWriteReport(t *testing.T) {
	expenses := report.Available([]core.Expense{
		{ID: "e1", Description: "March rent", Amount: decimal.NewFromInt(8), Category: core.CategoryRent, Date: core.NewDate(2026, 3, 1)},
	})
	r := report.Build(sampleSales(), expenses, 2026, 3)

	var buf bytes.Buffer
	if err := writeReport(&buf, r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"Report 2026-03",
		"Total revenue",
		"25.00",
		"Net profit",
		"17.00",
		"Pan",
		"Card",
		"Rent",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReportWithoutExpenses(t *testing.T) {
	r := report.Build(sampleSales(), report.Unavailable(), 2026, 3)

	var buf bytes.Buffer
	if err := writeReport(&buf, r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "Expenses unavailable") {
		t.Errorf("expected unavailable note:\n%s", out)
	}
	if strings.Contains(out, "Expense category") {
		t.Errorf("category table should be omitted:\n%s", out)
	}
	if !strings.Contains(out, report.NotAvailable) {
		t.Errorf("expected %q for expense figures:\n%s", report.NotAvailable, out)
	}
}
