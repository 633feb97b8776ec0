// Package form coerces raw operator input into a typed
// TransactionInput. Coercion is total and side-effect free: invalid
// input is rejected with a field-level error, never silently repaired.
package form

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// RawInput carries the operator's untyped field values exactly as
// submitted. Blank numeric fields are blank, not zero.
type RawInput struct {
	Amount          string `json:"amount"`
	Hour            string `json:"hour"`
	DayOfWeek       string `json:"dayOfWeek"`
	Category        string `json:"category"`
	Age             string `json:"age"`
	Gender          string `json:"gender"`
	City            string `json:"city"`
	Device          string `json:"device"`
	PaymentMethod   string `json:"paymentMethod"`
	ItemQuantity    string `json:"itemQuantity"`
	ShippingAddress string `json:"shippingAddress"`
	Browser         string `json:"browser"`
}

// Coerce validates and types a RawInput. It returns the first field
// that fails as a *domain.ValidationError.
func Coerce(raw RawInput) (*domain.TransactionInput, error) {
	amount, err := coerceAmount(raw.Amount)
	if err != nil {
		return nil, err
	}

	hour, err := coerceInt("hour", raw.Hour, 0, 23)
	if err != nil {
		return nil, err
	}

	dayOfWeek, err := coerceInt("dayOfWeek", raw.DayOfWeek, 0, 6)
	if err != nil {
		return nil, err
	}

	age, err := coerceInt("age", raw.Age, 18, 100)
	if err != nil {
		return nil, err
	}

	quantity, err := coerceInt("itemQuantity", raw.ItemQuantity, 1, 1<<31-1)
	if err != nil {
		return nil, err
	}

	category, err := coerceEnum("category", raw.Category, domain.Categories)
	if err != nil {
		return nil, err
	}

	gender, err := coerceEnum("gender", raw.Gender, domain.Genders)
	if err != nil {
		return nil, err
	}

	city, err := coerceEnum("city", raw.City, domain.Cities)
	if err != nil {
		return nil, err
	}

	device, err := coerceEnum("device", raw.Device, domain.Devices)
	if err != nil {
		return nil, err
	}

	paymentMethod, err := coerceEnum("paymentMethod", raw.PaymentMethod, domain.PaymentMethods)
	if err != nil {
		return nil, err
	}

	shipping, err := coerceEnum("shippingAddress", raw.ShippingAddress, domain.ShippingOptions)
	if err != nil {
		return nil, err
	}

	browser, err := coerceEnum("browser", raw.Browser, domain.Browsers)
	if err != nil {
		return nil, err
	}

	return &domain.TransactionInput{
		Amount:          amount,
		Hour:            hour,
		DayOfWeek:       dayOfWeek,
		Category:        category,
		Age:             age,
		Gender:          gender,
		City:            city,
		Device:          device,
		PaymentMethod:   paymentMethod,
		ItemQuantity:    quantity,
		ShippingAddress: shipping,
		Browser:         browser,
	}, nil
}

// coerceAmount parses a decimal amount. Blank input is rejected rather
// than defaulted to zero.
func coerceAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, &domain.ValidationError{Field: "amount", Reason: "is required"}
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &domain.ValidationError{Field: "amount", Reason: "must be a number"}
	}
	if amount.IsNegative() {
		return decimal.Zero, &domain.ValidationError{Field: "amount", Reason: "must not be negative"}
	}

	return amount, nil
}

func coerceInt(field, raw string, min, max int) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &domain.ValidationError{Field: field, Reason: "is required"}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &domain.ValidationError{Field: field, Reason: "must be an integer"}
	}
	if n < min || n > max {
		return 0, &domain.ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("must be between %d and %d", min, max),
		}
	}

	return n, nil
}

func coerceEnum(field, raw string, allowed []string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &domain.ValidationError{Field: field, Reason: "is required"}
	}
	if !slices.Contains(allowed, s) {
		return "", &domain.ValidationError{
			Field:  field,
			Reason: "must be one of: " + strings.Join(allowed, ", "),
		}
	}
	return s, nil
}
