// Package present shapes a scoring response into display values. All
// formatting decisions for a verdict live here so every surface shows
// the same text.
package present

import (
	"fmt"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// Verdict banners.
const (
	VerdictFraud      = "FRAUD DETECTED"
	VerdictLegitimate = "LEGITIMATE TRANSACTION"
)

// Tiers for surface styling. The tier follows the fraud flag, not the
// risk level, so a high-risk-but-cleared transaction still reads clear.
const (
	TierFlagged = "flagged"
	TierClear   = "clear"
)

// ViewModel is the display form of one assessment outcome.
type ViewModel struct {
	Tier             string   `json:"tier"`
	Verdict          string   `json:"verdict"`
	Probability      string   `json:"probability"`
	ModelProbability string   `json:"modelProbability"`
	RiskLevel        string   `json:"riskLevel"`
	TransactionID    string   `json:"transactionId"`
	Timestamp        string   `json:"timestamp"`
	RiskFactors      []string `json:"riskFactors"`

	// NoRiskFactors distinguishes "none identified" from a factors
	// list that simply was not rendered.
	NoRiskFactors bool `json:"noRiskFactors"`

	Recommendations []string `json:"recommendations"`
}

// Recommendation sets by verdict.
var (
	fraudRecommendations = []string{
		"Flag transaction for manual review",
		"Contact customer for verification",
		"Monitor account for suspicious activity",
		"Consider temporary account restrictions",
	}
	legitimateRecommendations = []string{
		"Transaction appears legitimate",
		"Continue normal processing",
		"Maintain regular monitoring",
	}
)

// Present builds the view model for a scoring response. The risk level
// is passed through verbatim; it is the service's classification and
// is never re-derived from the probabilities here.
func Present(resp *domain.ScoringResponse) ViewModel {
	vm := ViewModel{
		Probability:      formatPercent(resp.FraudProbability),
		ModelProbability: formatPercent(resp.XGBProbability),
		RiskLevel:        resp.RiskLevel,
		TransactionID:    resp.TransactionID,
		Timestamp:        resp.Timestamp,
		RiskFactors:      resp.RiskFactors,
		NoRiskFactors:    len(resp.RiskFactors) == 0,
	}

	if resp.IsFraud {
		vm.Tier = TierFlagged
		vm.Verdict = VerdictFraud
		vm.Recommendations = fraudRecommendations
	} else {
		vm.Tier = TierClear
		vm.Verdict = VerdictLegitimate
		vm.Recommendations = legitimateRecommendations
	}

	return vm
}

// formatPercent renders a probability with one decimal place. The
// scoring service already reports probabilities on a 0-100 scale, so
// no rescaling happens here.
func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
