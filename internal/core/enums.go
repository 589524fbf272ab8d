package core

import (
	"fmt"
	"strings"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCard     PaymentMethod = "card"
	PaymentOther    PaymentMethod = "other"
)

// PaymentMethods lists the accepted methods in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCash, PaymentTransfer, PaymentCard, PaymentOther}
}

var paymentAliases = map[string]PaymentMethod{
	"efectivo":      PaymentCash,
	"transferencia": PaymentTransfer,
	"tarjeta":       PaymentCard,
	"otro":          PaymentOther,
}

// ParsePaymentMethod accepts canonical names and the legacy Spanish labels,
// case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if pm := PaymentMethod(key); pm.Valid() {
		return pm, nil
	}
	if pm, ok := paymentAliases[key]; ok {
		return pm, nil
	}
	return "", fmt.Errorf("parse payment method %q: %w", s, ErrInvalidPayment)
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentTransfer, PaymentCard, PaymentOther:
		return true
	}
	return false
}

// Label is the capitalized display form, e.g. "Cash".
func (p PaymentMethod) Label() string {
	return capitalize(string(p))
}

type ExpenseCategory string

const (
	CategoryRent        ExpenseCategory = "rent"
	CategoryUtilities   ExpenseCategory = "utilities"
	CategorySalaries    ExpenseCategory = "salaries"
	CategorySuppliers   ExpenseCategory = "suppliers"
	CategoryMarketing   ExpenseCategory = "marketing"
	CategoryMaintenance ExpenseCategory = "maintenance"
	CategoryTaxes       ExpenseCategory = "taxes"
	CategoryOther       ExpenseCategory = "other"
)

func ExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{
		CategoryRent, CategoryUtilities, CategorySalaries, CategorySuppliers,
		CategoryMarketing, CategoryMaintenance, CategoryTaxes, CategoryOther,
	}
}

var categoryAliases = map[string]ExpenseCategory{
	"alquiler":      CategoryRent,
	"servicios":     CategoryUtilities,
	"sueldos":       CategorySalaries,
	"proveedores":   CategorySuppliers,
	"mantenimiento": CategoryMaintenance,
	"impuestos":     CategoryTaxes,
	"otros":         CategoryOther,
}

// ParseExpenseCategory accepts canonical names and the legacy Spanish labels,
// case-insensitively.
func ParseExpenseCategory(s string) (ExpenseCategory, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if c := ExpenseCategory(key); c.Valid() {
		return c, nil
	}
	if c, ok := categoryAliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("parse expense category %q: %w", s, ErrInvalidCategory)
}

func (c ExpenseCategory) Valid() bool {
	for _, known := range ExpenseCategories() {
		if c == known {
			return true
		}
	}
	return false
}

func (c ExpenseCategory) Label() string {
	return capitalize(string(c))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
