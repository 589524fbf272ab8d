package report

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"cassa/internal/core"
)

// NotAvailable is how a figure without data is displayed.
const NotAvailable = "N/A"

// Figure is an amount that may be unknown. An unavailable figure is never
// the same thing as zero.
type Figure struct {
	Available bool
	Value     decimal.Decimal
}

func Known(v decimal.Decimal) Figure { return Figure{Available: true, Value: v} }

type figureJSON struct {
	Available bool             `json:"available"`
	Value     *decimal.Decimal `json:"value,omitempty"`
	Display   string           `json:"display"`
}

// MarshalJSON omits the value of an unavailable figure, so a partial net
// profit is never read as a real one.
func (f Figure) MarshalJSON() ([]byte, error) {
	v := figureJSON{Available: f.Available, Display: f.Display()}
	if f.Available {
		value := f.Value
		v.Value = &value
	}
	return json.Marshal(v)
}

func (f *Figure) UnmarshalJSON(data []byte) error {
	var v figureJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Figure{Available: v.Available}
	if v.Available && v.Value != nil {
		f.Value = *v.Value
	}
	return nil
}

// Display renders the value with two decimals, or "N/A" when unavailable.
func (f Figure) Display() string {
	if !f.Available {
		return NotAvailable
	}
	return core.FormatAmount(f.Value)
}

// KPIs are the scalar metrics of one period. Without expense data
// NetProfit is unavailable and carries revenue as a partial value.
type KPIs struct {
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TotalExpenses    Figure          `json:"totalExpenses"`
	NetProfit        Figure          `json:"netProfit"`
	TransactionCount int             `json:"transactionCount"`
	AverageTicket    decimal.Decimal `json:"averageTicket"`
	TotalItemsSold   int             `json:"totalItemsSold"`
}

// ComputeKPIs expects sales and expenses already filtered to one period.
func ComputeKPIs(sales []core.Sale, expenses []core.Expense, expensesAvailable bool) KPIs {
	revenue := decimal.Zero
	items := 0
	for _, s := range sales {
		revenue = revenue.Add(s.Total)
		items += s.ItemCount()
	}

	k := KPIs{
		TotalRevenue:     revenue,
		TransactionCount: len(sales),
		AverageTicket:    decimal.Zero,
		TotalItemsSold:   items,
	}
	if len(sales) > 0 {
		k.AverageTicket = revenue.Div(decimal.NewFromInt(int64(len(sales))))
	}

	if !expensesAvailable {
		k.TotalExpenses = Figure{Available: false, Value: decimal.Zero}
		k.NetProfit = Figure{Available: false, Value: revenue}
		return k
	}

	spent := decimal.Zero
	for _, e := range expenses {
		spent = spent.Add(e.Amount)
	}
	k.TotalExpenses = Known(spent)
	k.NetProfit = Known(revenue.Sub(spent))
	return k
}
