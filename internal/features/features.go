// Package features derives the model features a scoring request needs
// beyond the raw transaction fields, and maps both into the wire
// request. Derivation is pure: same input, same features, no clock or
// session reads.
package features

import (
	"github.com/opensource-finance/kestrel/internal/domain"
)

// History-dependent feature defaults. The desk keeps no device or
// account history, so these are fixed neutral values rather than
// per-customer lookups.
const (
	DefaultIsNewDevice          = false
	DefaultIsDifferentCity      = false
	DefaultFailedAttempts       = 0
	DefaultAccountAgeDays       = 365
	DefaultTransactionFrequency = 5
)

// Derive computes the model features for one transaction input.
func Derive(input *domain.TransactionInput) domain.DerivedFeatures {
	return domain.DerivedFeatures{
		IsWeekend:            input.DayOfWeek == 0 || input.DayOfWeek == 6,
		ShippingBillingMatch: input.ShippingAddress == domain.ShippingSameAsBilling,
		IsNewDevice:          DefaultIsNewDevice,
		IsDifferentCity:      DefaultIsDifferentCity,
		FailedAttempts:       DefaultFailedAttempts,
		AccountAgeDays:       DefaultAccountAgeDays,
		TransactionFrequency: DefaultTransactionFrequency,
	}
}
