package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const maxTextLength = 200

type (
	Product struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Price    decimal.Decimal `json:"price"`
		Category *string         `json:"category,omitempty"`
		Stock    *int            `json:"stock,omitempty"`
	}

	// CartLine is one product row of a cart. Name and UnitPrice are copied
	// from the product when the line is created and never looked up again.
	CartLine struct {
		ProductID string          `json:"productId"`
		Name      string          `json:"name"`
		UnitPrice decimal.Decimal `json:"unitPrice"`
		Quantity  int             `json:"quantity"`
	}

	Sale struct {
		ID            string          `json:"id"`
		Date          Date            `json:"date"`
		Items         []CartLine      `json:"items"`
		Total         decimal.Decimal `json:"total"`
		PaymentMethod PaymentMethod   `json:"paymentMethod"`
		CustomerName  *string         `json:"customerName,omitempty"`
	}

	Expense struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Category    ExpenseCategory `json:"category"`
		Date        Date            `json:"date"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrMissingDate      = errors.New("missing date")
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrMissingAmount    = errors.New("missing amount")
	ErrMissingPrice     = errors.New("missing price")
	ErrNegativePrice    = errors.New("negative price")
	ErrNegativeStock    = errors.New("negative stock")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
	ErrTextTooLong      = errors.New("text too long (max 200 characters)")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidCategory  = errors.New("invalid expense category")
	ErrInvalidPayment   = errors.New("invalid payment method")
	ErrEmptyItems       = errors.New("sale has no items")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrMissingProductID = errors.New("missing product id")
	ErrMissingTotal     = errors.New("missing total")
	ErrTotalMismatch    = errors.New("total does not match items")
)

// OptionalString returns nil for blank input and a pointer to the trimmed
// value otherwise.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func validateText(s string, empty error) error {
	if strings.TrimSpace(s) == "" {
		return empty
	}
	if len(s) > maxTextLength {
		return ErrTextTooLong
	}
	return nil
}

func (p Product) Validate() error {
	if err := validateText(p.Name, ErrEmptyName); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Category != nil {
		if err := validateText(*p.Category, ErrEmptyCategory); err != nil {
			return err
		}
	}
	if p.Stock != nil && *p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// LineTotal returns UnitPrice × Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return LineTotal(l.UnitPrice, l.Quantity)
}

func (l CartLine) Validate() error {
	if strings.TrimSpace(l.ProductID) == "" {
		return ErrMissingProductID
	}
	if err := validateText(l.Name, ErrEmptyName); err != nil {
		return err
	}
	if l.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// RecordDate is the calendar date the sale belongs to.
func (s Sale) RecordDate() Date { return s.Date }

// ItemsTotal sums the line totals of the sale's items.
func (s Sale) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// ItemCount is the number of units sold, summed over all lines.
func (s Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

func (s Sale) Validate() error {
	if err := s.Date.Validate(); err != nil {
		return err
	}
	if len(s.Items) == 0 {
		return ErrEmptyItems
	}
	for _, it := range s.Items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	if !s.Total.Equal(s.ItemsTotal()) {
		return ErrTotalMismatch
	}
	if !s.PaymentMethod.Valid() {
		return ErrInvalidPayment
	}
	if s.CustomerName != nil && len(*s.CustomerName) > maxTextLength {
		return ErrTextTooLong
	}
	return nil
}

// RecordDate is the calendar date the expense belongs to.
func (e Expense) RecordDate() Date { return e.Date }

func (e Expense) Validate() error {
	if err := validateText(e.Description, ErrEmptyDescription); err != nil {
		return err
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	return e.Date.Validate()
}

// IsValidation reports whether err is one of the validation sentinels of
// this package.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var validationErrors = []error{
	ErrInvalidDate, ErrMissingDate, ErrInvalidDay, ErrInvalidMonth,
	ErrInvalidAmount, ErrMissingAmount, ErrMissingPrice, ErrNegativePrice,
	ErrNegativeStock, ErrEmptyName, ErrEmptyDescription, ErrTextTooLong,
	ErrEmptyCategory, ErrInvalidCategory, ErrInvalidPayment, ErrEmptyItems,
	ErrInvalidQuantity, ErrMissingProductID, ErrMissingTotal, ErrTotalMismatch,
}
