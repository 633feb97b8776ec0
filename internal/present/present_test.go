package present

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opensource-finance/kestrel/internal/domain"
)

func TestPresentFraud(t *testing.T) {
	vm := Present(&domain.ScoringResponse{
		IsFraud:          true,
		FraudProbability: 87.3,
		XGBProbability:   91.2,
		RiskLevel:        "High",
		RiskFactors:      []string{"High transaction amount", "Odd hour"},
		TransactionID:    "TXN-1001",
		Timestamp:        "2026-08-31T10:00:00Z",
	})

	assert.Equal(t, TierFlagged, vm.Tier)
	assert.Equal(t, VerdictFraud, vm.Verdict)
	assert.Equal(t, "87.3%", vm.Probability)
	assert.Equal(t, "91.2%", vm.ModelProbability)
	assert.Equal(t, "High", vm.RiskLevel)
	assert.False(t, vm.NoRiskFactors)
	assert.Equal(t, []string{
		"Flag transaction for manual review",
		"Contact customer for verification",
		"Monitor account for suspicious activity",
		"Consider temporary account restrictions",
	}, vm.Recommendations)
}

func TestPresentLegitimate(t *testing.T) {
	vm := Present(&domain.ScoringResponse{
		IsFraud:          false,
		FraudProbability: 5.0,
		XGBProbability:   4.0,
		RiskLevel:        "Low",
		TransactionID:    "TXN-1002",
	})

	assert.Equal(t, TierClear, vm.Tier)
	assert.Equal(t, VerdictLegitimate, vm.Verdict)
	assert.Equal(t, "5.0%", vm.Probability)
	assert.True(t, vm.NoRiskFactors)
	assert.Equal(t, []string{
		"Transaction appears legitimate",
		"Continue normal processing",
		"Maintain regular monitoring",
	}, vm.Recommendations)
}

// A high risk level on a cleared transaction must not flip the tier.
func TestPresentTierFollowsFraudFlag(t *testing.T) {
	vm := Present(&domain.ScoringResponse{
		IsFraud:   false,
		RiskLevel: "High",
	})
	assert.Equal(t, TierClear, vm.Tier)
	assert.Equal(t, "High", vm.RiskLevel)
}

// The service sends probabilities already on a 0-100 scale (the model
// multiplies by 100 and rounds to two decimals before responding);
// formatting must not rescale them.
func TestPresentProbabilityScale(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0, "0.0%"},
		{100, "100.0%"},
		{50, "50.0%"},
		{12.34, "12.3%"},
		{85.23, "85.2%"},
		{99.99, "100.0%"},
		{0.5, "0.5%"},
	}
	for _, tt := range tests {
		vm := Present(&domain.ScoringResponse{FraudProbability: tt.p})
		assert.Equal(t, tt.want, vm.Probability)
	}
}
