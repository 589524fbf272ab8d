package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"cassa/internal/core"
)

// DefaultTopProducts is the ranking length used when no limit is given.
const DefaultTopProducts = 10

type DailyTotal struct {
	Day   int             `json:"day"`
	Total decimal.Decimal `json:"total"`
}

type ProductSales struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type PaymentCount struct {
	Method core.PaymentMethod `json:"method"`
	Count  int                `json:"count"`
}

type CategoryTotal struct {
	Category core.ExpenseCategory `json:"category"`
	Amount   decimal.Decimal      `json:"amount"`
}

// DailySales sums sale totals per day of month. Only days with sales appear,
// in ascending order.
func DailySales(sales []core.Sale) []DailyTotal {
	byDay := make(map[int]decimal.Decimal)
	for _, s := range sales {
		byDay[s.Date.Day] = byDay[s.Date.Day].Add(s.Total)
	}
	out := make([]DailyTotal, 0, len(byDay))
	for day, total := range byDay {
		out = append(out, DailyTotal{Day: day, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// ZeroFill expands a sparse daily series to one entry per day of p.
func ZeroFill(series []DailyTotal, p Period) []DailyTotal {
	days := p.Days()
	out := make([]DailyTotal, days)
	for i := range out {
		out[i] = DailyTotal{Day: i + 1, Total: decimal.Zero}
	}
	for _, d := range series {
		if d.Day >= 1 && d.Day <= days {
			out[d.Day-1].Total = out[d.Day-1].Total.Add(d.Total)
		}
	}
	return out
}

// TopProducts ranks products by revenue, highest first. Ties keep the order
// in which products were first seen. The name is the one recorded on the
// first sale line encountered for the product. limit <= 0 means
// DefaultTopProducts.
func TopProducts(sales []core.Sale, limit int) []ProductSales {
	if limit <= 0 {
		limit = DefaultTopProducts
	}
	index := make(map[string]int)
	ranked := make([]ProductSales, 0)
	for _, s := range sales {
		for _, it := range s.Items {
			i, ok := index[it.ProductID]
			if !ok {
				i = len(ranked)
				index[it.ProductID] = i
				ranked = append(ranked, ProductSales{ProductID: it.ProductID, Name: it.Name, Revenue: decimal.Zero})
			}
			ranked[i].Quantity += it.Quantity
			ranked[i].Revenue = ranked[i].Revenue.Add(it.LineTotal())
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// PaymentMethodDistribution counts sales per payment method in first-seen order.
func PaymentMethodDistribution(sales []core.Sale) []PaymentCount {
	index := make(map[core.PaymentMethod]int)
	out := make([]PaymentCount, 0)
	for _, s := range sales {
		i, ok := index[s.PaymentMethod]
		if !ok {
			i = len(out)
			index[s.PaymentMethod] = i
			out = append(out, PaymentCount{Method: s.PaymentMethod})
		}
		out[i].Count++
	}
	return out
}

// ExpenseCategoryTotals sums expense amounts per category in first-seen order.
func ExpenseCategoryTotals(expenses []core.Expense) []CategoryTotal {
	index := make(map[core.ExpenseCategory]int)
	out := make([]CategoryTotal, 0)
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CategoryTotal{Category: e.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	return out
}
