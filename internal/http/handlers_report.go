package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"cassa/internal/core"
	"cassa/internal/report"
)

type paymentView struct {
	Method core.PaymentMethod `json:"method"`
	Label  string             `json:"label"`
	Count  int                `json:"count"`
}

type categoryView struct {
	Category core.ExpenseCategory `json:"category"`
	Label    string               `json:"label"`
	Amount   decimal.Decimal      `json:"amount"`
}

type reportView struct {
	Period            string                `json:"period"`
	Year              int                   `json:"year"`
	Month             int                   `json:"month"`
	KPIs              report.KPIs           `json:"kpis"`
	DailySales        []report.DailyTotal   `json:"dailySales"`
	TopProducts       []report.ProductSales `json:"topProducts"`
	PaymentMethods    []paymentView         `json:"paymentMethods"`
	ExpenseCategories *[]categoryView       `json:"expenseCategories,omitempty"`
	ExpensesAvailable bool                  `json:"expensesAvailable"`
}

func newReportView(r report.Report, dense bool) reportView {
	daily := r.DailySales
	if dense {
		daily = report.ZeroFill(daily, r.Period)
	}
	if daily == nil {
		daily = []report.DailyTotal{}
	}
	top := r.TopProducts
	if top == nil {
		top = []report.ProductSales{}
	}

	v := reportView{
		Period:            r.Period.String(),
		Year:              r.Period.Year,
		Month:             r.Period.Month,
		KPIs:              r.KPIs,
		DailySales:        daily,
		TopProducts:       top,
		PaymentMethods:    make([]paymentView, 0, len(r.PaymentMethods)),
		ExpensesAvailable: r.ExpensesAvailable,
	}
	for _, pm := range r.PaymentMethods {
		v.PaymentMethods = append(v.PaymentMethods, paymentView{Method: pm.Method, Label: pm.Method.Label(), Count: pm.Count})
	}
	// Categories are omitted only when expenses could not be loaded; no
	// expenses at all is an empty list.
	if r.ExpensesAvailable {
		categories := make([]categoryView, 0, len(r.ExpenseCategories))
		for _, c := range r.ExpenseCategories {
			categories = append(categories, categoryView{Category: c.Category, Label: c.Category.Label(), Amount: c.Amount})
		}
		v.ExpenseCategories = &categories
	}
	return v
}

// handleMonthlyReport serves ?year=&month= (default: current month).
// dense=1 fills the daily series with zero days.
func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	p, err := parseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.svc.Reports.Monthly(r.Context(), p.Year, p.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReportView(rep, parseBoolParam(r.URL.Query(), "dense")))
}
