package features

import (
	"github.com/opensource-finance/kestrel/internal/domain"
)

// BuildRequest assembles the scoring request from a coerced input and
// its derived features. Each feature lands in exactly one request
// field. Item quantity is collected for the report but is not part of
// the model schema, so it does not appear here.
func BuildRequest(input *domain.TransactionInput, feats domain.DerivedFeatures) domain.ScoringRequest {
	amount, _ := input.Amount.Float64()

	return domain.ScoringRequest{
		Amount:               amount,
		PaymentMethod:        input.PaymentMethod,
		Category:             input.Category,
		Gender:               input.Gender,
		City:                 input.City,
		Device:               input.Device,
		ShippingAddress:      input.ShippingAddress,
		BrowserInfo:          input.Browser,
		Age:                  input.Age,
		Hour:                 input.Hour,
		DayOfWeek:            input.DayOfWeek,
		IsWeekend:            feats.IsWeekend,
		IsNewDevice:          feats.IsNewDevice,
		IsDifferentCity:      feats.IsDifferentCity,
		FailedAttempts:       feats.FailedAttempts,
		ShippingBillingMatch: feats.ShippingBillingMatch,
		AccountAge:           feats.AccountAgeDays,
		TransactionFrequency: feats.TransactionFrequency,
	}
}
