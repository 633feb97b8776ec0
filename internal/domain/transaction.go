package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionInput is the typed description of a single transaction as
// entered at the analysis desk. It only exists after field coercion has
// succeeded, so every field is guaranteed valid.
type TransactionInput struct {
	Amount          decimal.Decimal
	Hour            int // 0-23
	DayOfWeek       int // 0-6, Sunday=0
	Category        string
	Age             int // 18-100
	Gender          string
	City            string
	Device          string
	PaymentMethod   string
	ItemQuantity    int
	ShippingAddress string
	Browser         string
}

// Closed value sets for the enum fields of TransactionInput.
// These mirror the option lists the scoring model was trained on.
var (
	Categories      = []string{"groceries", "electronics", "clothing", "books", "food_delivery", "mobile_recharge"}
	Cities          = []string{"Mumbai", "Delhi", "Bangalore", "Chennai", "Kolkata", "Pune", "Hyderabad"}
	Devices         = []string{"mobile", "desktop", "tablet"}
	PaymentMethods  = []string{"upi", "credit_card", "debit_card", "net_banking", "wallet"}
	Browsers        = []string{"Chrome", "Firefox", "Safari", "Edge"}
	Genders         = []string{"M", "F"}
	ShippingOptions = []string{ShippingSameAsBilling, ShippingDifferent}
)

const (
	ShippingSameAsBilling = "Same as billing"
	ShippingDifferent     = "Different"
)

// DerivedFeatures holds the features computed from a TransactionInput
// before submission. The history-dependent fields are fixed defaults
// because the desk tracks no device or account history.
type DerivedFeatures struct {
	IsWeekend            bool
	ShippingBillingMatch bool
	IsNewDevice          bool
	IsDifferentCity      bool
	FailedAttempts       int
	AccountAgeDays       int
	TransactionFrequency int
}

// ScoringRequest is the wire payload for POST /api/predict on the
// scoring service. Field names follow the model's snake_case schema.
// A request is built once per submission and never mutated.
type ScoringRequest struct {
	Amount               float64 `json:"amount"`
	PaymentMethod        string  `json:"payment_method"`
	Category             string  `json:"category"`
	Gender               string  `json:"gender"`
	City                 string  `json:"city"`
	Device               string  `json:"device"`
	ShippingAddress      string  `json:"shipping_address"`
	BrowserInfo          string  `json:"browser_info"`
	Age                  int     `json:"age"`
	Hour                 int     `json:"hour"`
	DayOfWeek            int     `json:"day_of_week"`
	IsWeekend            bool    `json:"is_weekend"`
	IsNewDevice          bool    `json:"is_new_device"`
	IsDifferentCity      bool    `json:"is_different_city"`
	FailedAttempts       int     `json:"failed_attempts"`
	ShippingBillingMatch bool    `json:"shipping_billing_match"`
	AccountAge           int     `json:"account_age"`
	TransactionFrequency int     `json:"transaction_frequency"`
}

// ScoringResponse is the scoring service's verdict for one request.
// The risk level is the server's classification and is never
// re-derived from the probabilities on this side.
type ScoringResponse struct {
	IsFraud          bool     `json:"is_fraud"`
	FraudProbability float64  `json:"fraud_probability"`
	XGBProbability   float64  `json:"xgb_probability"`
	RiskLevel        string   `json:"risk_level"`
	RiskFactors      []string `json:"risk_factors"`
	TransactionID    string   `json:"transaction_id"`
	Timestamp        string   `json:"timestamp"`
}

// Assessment is a completed analysis: the operator's input together
// with the scoring service's response, as persisted for review.
type Assessment struct {
	ID        string           `json:"id"`
	Analyst   string           `json:"analyst,omitempty"`
	Input     TransactionInput `json:"input"`
	Request   ScoringRequest   `json:"request"`
	Response  ScoringResponse  `json:"response"`
	CreatedAt time.Time        `json:"createdAt"`
}
