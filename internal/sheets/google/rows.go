package google

import (
	"fmt"

	"cassa/internal/core"
	"cassa/internal/report"
)

// sheetTitle names the tab holding the report of one month.
func sheetTitle(prefix string, p report.Period) string {
	if prefix == "" {
		return p.String()
	}
	return fmt.Sprintf("%s %s", prefix, p.String())
}

// reportRows lays a report out as a values matrix: a KPI block followed by
// one section per grouping, separated by empty rows.
func reportRows(r report.Report) [][]any {
	k := r.KPIs
	rows := [][]any{
		{"Period", r.Period.String()},
		{"Total revenue", core.FormatAmount(k.TotalRevenue)},
		{"Total expenses", k.TotalExpenses.Display()},
		{"Net profit", k.NetProfit.Display()},
		{"Transactions", k.TransactionCount},
		{"Average ticket", core.FormatAmount(k.AverageTicket)},
		{"Items sold", k.TotalItemsSold},
		{},
		{"Day", "Sales"},
	}
	for _, d := range r.DailySales {
		rows = append(rows, []any{d.Day, core.FormatAmount(d.Total)})
	}

	rows = append(rows, []any{}, []any{"Product", "Quantity", "Revenue"})
	for _, p := range r.TopProducts {
		rows = append(rows, []any{p.Name, p.Quantity, core.FormatAmount(p.Revenue)})
	}

	rows = append(rows, []any{}, []any{"Payment method", "Sales"})
	for _, pm := range r.PaymentMethods {
		rows = append(rows, []any{pm.Method.Label(), pm.Count})
	}

	rows = append(rows, []any{}, []any{"Expense category", "Amount"})
	if !r.ExpensesAvailable {
		rows = append(rows, []any{report.NotAvailable, report.NotAvailable})
	}
	for _, c := range r.ExpenseCategories {
		rows = append(rows, []any{c.Category.Label(), core.FormatAmount(c.Amount)})
	}
	return rows
}
