package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cassa/internal/core"
	"cassa/internal/report"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object into dst. Unknown fields are
// rejected so that typos do not silently drop data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is empty")
		}
		return badRequest(fmt.Sprintf("invalid JSON body: %v", err))
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

// parseAmountJSON accepts an amount either as a JSON number or as a string
// such as "12,34". An absent or null value yields missing.
func parseAmountJSON(raw json.RawMessage, missing error) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Decimal{}, missing
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, core.ErrInvalidAmount
		}
		if strings.TrimSpace(s) == "" {
			return decimal.Decimal{}, missing
		}
	}
	return core.ParseAmount(s)
}

func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	return core.OptionalString(sanitizeInput(*v))
}

func requiredText(v *string, missing error) (string, error) {
	if v == nil {
		return "", missing
	}
	s := sanitizeInput(*v)
	if s == "" {
		return "", missing
	}
	return s, nil
}

type productInput struct {
	Name     *string         `json:"name"`
	Price    json.RawMessage `json:"price"`
	Category *string         `json:"category"`
	Stock    *int            `json:"stock"`
}

func (in productInput) toProduct() (core.Product, error) {
	name, err := requiredText(in.Name, core.ErrEmptyName)
	if err != nil {
		return core.Product{}, err
	}
	price, err := parseAmountJSON(in.Price, core.ErrMissingPrice)
	if err != nil {
		return core.Product{}, err
	}
	p := core.Product{
		Name:     name,
		Price:    price,
		Category: optionalText(in.Category),
		Stock:    in.Stock,
	}
	return p, p.Validate()
}

type cartItemInput struct {
	ProductID string `json:"productId"`
}

type quantityInput struct {
	Delta *int `json:"delta"`
}

type checkoutInput struct {
	PaymentMethod *string `json:"paymentMethod"`
	CustomerName  *string `json:"customerName"`
}

// paymentMethod defaults to cash when none was chosen.
func (in checkoutInput) paymentMethod() (core.PaymentMethod, error) {
	if in.PaymentMethod == nil || strings.TrimSpace(*in.PaymentMethod) == "" {
		return core.PaymentCash, nil
	}
	return core.ParsePaymentMethod(*in.PaymentMethod)
}

type saleLineInput struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice json.RawMessage `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

type saleInput struct {
	Date          *string         `json:"date"`
	Items         []saleLineInput `json:"items"`
	Total         json.RawMessage `json:"total"`
	PaymentMethod *string         `json:"paymentMethod"`
	CustomerName  *string         `json:"customerName"`
}

// toSale builds the sale to import. A missing date means today.
func (in saleInput) toSale(today core.Date) (core.Sale, error) {
	if len(in.Items) == 0 {
		return core.Sale{}, core.ErrEmptyItems
	}
	total, err := parseAmountJSON(in.Total, core.ErrMissingTotal)
	if err != nil {
		return core.Sale{}, err
	}

	date := today
	if in.Date != nil && strings.TrimSpace(*in.Date) != "" {
		if date, err = core.ParseDate(*in.Date); err != nil {
			return core.Sale{}, err
		}
	}

	method := core.PaymentCash
	if in.PaymentMethod != nil && strings.TrimSpace(*in.PaymentMethod) != "" {
		if method, err = core.ParsePaymentMethod(*in.PaymentMethod); err != nil {
			return core.Sale{}, err
		}
	}

	items := make([]core.CartLine, 0, len(in.Items))
	for i, l := range in.Items {
		price, err := parseAmountJSON(l.UnitPrice, core.ErrMissingPrice)
		if err != nil {
			return core.Sale{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		items = append(items, core.CartLine{
			ProductID: strings.TrimSpace(l.ProductID),
			Name:      sanitizeInput(l.Name),
			UnitPrice: price,
			Quantity:  l.Quantity,
		})
	}

	return core.Sale{
		Date:          date,
		Items:         items,
		Total:         total,
		PaymentMethod: method,
		CustomerName:  optionalText(in.CustomerName),
	}, nil
}

type expenseInput struct {
	Description *string         `json:"description"`
	Amount      json.RawMessage `json:"amount"`
	Category    *string         `json:"category"`
	Date        *string         `json:"date"`
}

func (in expenseInput) toExpense() (core.Expense, error) {
	description, err := requiredText(in.Description, core.ErrEmptyDescription)
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := parseAmountJSON(in.Amount, core.ErrMissingAmount)
	if err != nil {
		return core.Expense{}, err
	}
	categoryText, err := requiredText(in.Category, core.ErrEmptyCategory)
	if err != nil {
		return core.Expense{}, err
	}
	category, err := core.ParseExpenseCategory(categoryText)
	if err != nil {
		return core.Expense{}, err
	}
	dateText, err := requiredText(in.Date, core.ErrMissingDate)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(dateText)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{Description: description, Amount: amount, Category: category, Date: date}
	return e, e.Validate()
}

// parseMonthParams reads year and month from the query, defaulting each to
// the current one.
func parseMonthParams(query url.Values, now time.Time) (report.Period, error) {
	p := report.NewPeriod(now.Year(), int(now.Month()))
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return report.Period{}, badRequest(fmt.Sprintf("invalid year %q", v))
		}
		p.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return report.Period{}, badRequest(fmt.Sprintf("invalid month %q", v))
		}
		p.Month = m
	}
	return p, p.Validate()
}

func parseBoolParam(query url.Values, name string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(query.Get(name)))
	return b
}
