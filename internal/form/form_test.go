package form

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensource-finance/kestrel/internal/domain"
)

func validRaw() RawInput {
	return RawInput{
		Amount:          "2499.99",
		Hour:            "14",
		DayOfWeek:       "5",
		Category:        "electronics",
		Age:             "28",
		Gender:          "M",
		City:            "Mumbai",
		Device:          "mobile",
		PaymentMethod:   "upi",
		ItemQuantity:    "2",
		ShippingAddress: domain.ShippingSameAsBilling,
		Browser:         "Chrome",
	}
}

func TestCoerceValid(t *testing.T) {
	input, err := Coerce(validRaw())
	require.NoError(t, err)

	assert.True(t, input.Amount.Equal(decimal.RequireFromString("2499.99")))
	assert.Equal(t, 14, input.Hour)
	assert.Equal(t, 5, input.DayOfWeek)
	assert.Equal(t, "electronics", input.Category)
	assert.Equal(t, 28, input.Age)
	assert.Equal(t, 2, input.ItemQuantity)
	assert.Equal(t, domain.ShippingSameAsBilling, input.ShippingAddress)
}

func TestCoerceTrimsWhitespace(t *testing.T) {
	raw := validRaw()
	raw.Amount = "  100.50  "
	raw.Hour = " 9 "
	raw.City = " Delhi "

	input, err := Coerce(raw)
	require.NoError(t, err)
	assert.True(t, input.Amount.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, 9, input.Hour)
	assert.Equal(t, "Delhi", input.City)
}

func TestCoerceRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawInput)
		field  string
	}{
		{"blank amount", func(r *RawInput) { r.Amount = "" }, "amount"},
		{"non-numeric amount", func(r *RawInput) { r.Amount = "12,000" }, "amount"},
		{"negative amount", func(r *RawInput) { r.Amount = "-5" }, "amount"},
		{"infinite amount", func(r *RawInput) { r.Amount = "Inf" }, "amount"},
		{"blank hour", func(r *RawInput) { r.Hour = "" }, "hour"},
		{"hour too large", func(r *RawInput) { r.Hour = "24" }, "hour"},
		{"negative hour", func(r *RawInput) { r.Hour = "-1" }, "hour"},
		{"fractional hour", func(r *RawInput) { r.Hour = "9.5" }, "hour"},
		{"day out of range", func(r *RawInput) { r.DayOfWeek = "7" }, "dayOfWeek"},
		{"age below minimum", func(r *RawInput) { r.Age = "17" }, "age"},
		{"age above maximum", func(r *RawInput) { r.Age = "101" }, "age"},
		{"zero quantity", func(r *RawInput) { r.ItemQuantity = "0" }, "itemQuantity"},
		{"unknown category", func(r *RawInput) { r.Category = "jewellery" }, "category"},
		{"unknown city", func(r *RawInput) { r.City = "Jaipur" }, "city"},
		{"wrong enum case", func(r *RawInput) { r.PaymentMethod = "UPI" }, "paymentMethod"},
		{"unknown shipping", func(r *RawInput) { r.ShippingAddress = "PO Box" }, "shippingAddress"},
		{"unknown browser", func(r *RawInput) { r.Browser = "Opera" }, "browser"},
		{"blank gender", func(r *RawInput) { r.Gender = "" }, "gender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)

			input, err := Coerce(raw)
			require.Nil(t, input)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCoerceBoundaryValues(t *testing.T) {
	raw := validRaw()
	raw.Hour = "0"
	raw.DayOfWeek = "0"
	raw.Age = "18"
	raw.ItemQuantity = "1"

	_, err := Coerce(raw)
	require.NoError(t, err)

	raw.Hour = "23"
	raw.DayOfWeek = "6"
	raw.Age = "100"

	_, err = Coerce(raw)
	require.NoError(t, err)
}
