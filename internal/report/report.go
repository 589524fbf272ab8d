package report

import "cassa/internal/core"

// ExpenseSource is expense history together with whether it could be loaded.
type ExpenseSource struct {
	Records   []core.Expense
	Available bool
}

// Available wraps successfully loaded expenses, possibly none.
func Available(records []core.Expense) ExpenseSource {
	return ExpenseSource{Records: records, Available: true}
}

// Unavailable marks expense history as not loadable.
func Unavailable() ExpenseSource {
	return ExpenseSource{}
}

// Report is the view model of one month.
type Report struct {
	Period            Period          `json:"period"`
	KPIs              KPIs            `json:"kpis"`
	DailySales        []DailyTotal    `json:"dailySales"`
	TopProducts       []ProductSales  `json:"topProducts"`
	PaymentMethods    []PaymentCount  `json:"paymentMethods"`
	ExpenseCategories []CategoryTotal `json:"expenseCategories"`
	ExpensesAvailable bool            `json:"expensesAvailable"`
}

// Build filters the full histories to year/month and aggregates them.
func Build(sales []core.Sale, expenses ExpenseSource, year, month int) Report {
	return BuildTop(sales, expenses, year, month, DefaultTopProducts)
}

// BuildTop is Build with an explicit top products limit.
func BuildTop(sales []core.Sale, expenses ExpenseSource, year, month, topLimit int) Report {
	periodSales := FilterPeriod(sales, year, month)

	var periodExpenses []core.Expense
	if expenses.Available {
		periodExpenses = FilterPeriod(expenses.Records, year, month)
	}

	r := Report{
		Period:            NewPeriod(year, month),
		KPIs:              ComputeKPIs(periodSales, periodExpenses, expenses.Available),
		DailySales:        DailySales(periodSales),
		TopProducts:       TopProducts(periodSales, topLimit),
		PaymentMethods:    PaymentMethodDistribution(periodSales),
		ExpensesAvailable: expenses.Available,
	}
	if expenses.Available {
		r.ExpenseCategories = ExpenseCategoryTotals(periodExpenses)
	}
	return r
}
