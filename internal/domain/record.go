package domain

import (
	"strings"
	"time"
)

// FlaggedTransaction is a row on the flagged-transaction review list.
// The filter engine reads it and never mutates it.
type FlaggedTransaction struct {
	ID               string    `json:"id"`
	TransactionID    string    `json:"transactionId"`
	Amount           float64   `json:"amount"`
	PaymentMethod    string    `json:"paymentMethod"`
	Category         string    `json:"category"`
	UserEmail        string    `json:"userEmail"`
	FraudProbability float64   `json:"fraudProbability"`
	RiskLevel        string    `json:"riskLevel"`
	Status           string    `json:"status"` // pending, approved, rejected
	FlaggedAt        time.Time `json:"flaggedAt"`
	ReviewedBy       string    `json:"reviewedBy,omitempty"`
	ReviewedAt       time.Time `json:"reviewedAt,omitzero"`
	RiskFactors      []string  `json:"riskFactors"`
}

// Review statuses for flagged transactions.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// SearchText returns the fields matched by free-text search.
func (t *FlaggedTransaction) SearchText() []string {
	return []string{t.TransactionID, t.UserEmail, t.Category}
}

// Facet returns the value of a categorical filter dimension. Risk is
// exposed lowercased so facet selections stay case-stable.
func (t *FlaggedTransaction) Facet(name string) (string, bool) {
	switch name {
	case "status":
		return t.Status, true
	case "risk":
		return strings.ToLower(t.RiskLevel), true
	default:
		return "", false
	}
}

// UserRecord is a row on the user-review list.
type UserRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`   // customer, admin
	Status    string    `json:"status"` // active, inactive, suspended
	RiskScore string    `json:"riskScore"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// SearchText returns the fields matched by free-text search.
func (u *UserRecord) SearchText() []string {
	return []string{u.Name, u.Email}
}

// Facet returns the value of a categorical filter dimension.
func (u *UserRecord) Facet(name string) (string, bool) {
	switch name {
	case "role":
		return u.Role, true
	case "status":
		return u.Status, true
	default:
		return "", false
	}
}

// Stats is the aggregate payload from the scoring service's
// GET /api/stats. The schema is owned by the remote service; only the
// fields read here are typed.
type Stats struct {
	TotalTransactions      int                  `json:"totalTransactions"`
	FraudDetected          int                  `json:"fraudDetected"`
	LegitimateTransactions int                  `json:"legitimateTransactions"`
	TotalSaved             string               `json:"totalSaved"`
	FraudRate              float64              `json:"fraudRate"`
	AvgTransactionAmount   string               `json:"avgTransactionAmount"`
	RecentTransactions     []RecentTransaction  `json:"recentTransactions"`
	PaymentMethodStats     []PaymentMethodStats `json:"paymentMethodStats"`
	LastUpdated            string               `json:"lastUpdated"`
}

// RecentTransaction is one entry in the dashboard's recent list.
type RecentTransaction struct {
	ID            string  `json:"id"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	Confidence    float64 `json:"confidence"`
	Time          string  `json:"time"`
	User          string  `json:"user"`
	Category      string  `json:"category"`
	PaymentMethod string  `json:"paymentMethod"`
}

// PaymentMethodStats is the per-method fraud breakdown.
type PaymentMethodStats struct {
	Method    string  `json:"method"`
	Total     int     `json:"total"`
	Fraud     int     `json:"fraud"`
	FraudRate float64 `json:"fraud_rate"`
}
