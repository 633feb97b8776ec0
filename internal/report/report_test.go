package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensource-finance/kestrel/internal/domain"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func fraudAssessment() *domain.Assessment {
	return &domain.Assessment{
		ID: "a-1",
		Input: domain.TransactionInput{
			Amount:          decimal.RequireFromString("18999.00"),
			Hour:            2,
			DayOfWeek:       6,
			Category:        "electronics",
			Age:             22,
			Gender:          "M",
			City:            "Mumbai",
			Device:          "mobile",
			PaymentMethod:   "credit_card",
			ItemQuantity:    3,
			ShippingAddress: domain.ShippingDifferent,
			Browser:         "Chrome",
		},
		Response: domain.ScoringResponse{
			IsFraud:          true,
			FraudProbability: 87.04,
			XGBProbability:   91.5,
			RiskLevel:        "High",
			RiskFactors: []string{
				"High transaction amount",
				"Transaction at unusual hour",
				"Shipping address differs from billing",
			},
			TransactionID: "TXN-1001",
			Timestamp:     "2026-08-31T10:29:58Z",
		},
		CreatedAt: time.Date(2026, 8, 31, 10, 29, 58, 0, time.UTC),
	}
}

func allLines(doc *Document) []Line {
	var lines []Line
	for _, p := range doc.Pages {
		lines = append(lines, p.Lines...)
	}
	return lines
}

func findLine(doc *Document, prefix string) *Line {
	for _, l := range allLines(doc) {
		if strings.HasPrefix(l.Text, prefix) {
			return &l
		}
	}
	return nil
}

func TestSynthesizeFraudReport(t *testing.T) {
	doc := NewSynthesizerAt(fixedClock()).Synthesize(fraudAssessment(), "Priya Sharma")

	require.NotEmpty(t, doc.Pages)
	assert.Equal(t, "fraud-analysis-TXN-1001.txt", doc.Filename)

	text := string(doc.Bytes())
	assert.Contains(t, text, "Fraud Detection Analysis Report")
	assert.Contains(t, text, "Prepared by: Priya Sharma")
	assert.Contains(t, text, "Verdict: FRAUD DETECTED")
	assert.Contains(t, text, "Fraud Probability: 87.0%")
	assert.Contains(t, text, "Risk Level: High")
	assert.Contains(t, text, "1. High transaction amount")
	assert.Contains(t, text, "2. Transaction at unusual hour")
	assert.Contains(t, text, "3. Shipping address differs from billing")
	assert.Contains(t, text, "- Flag transaction for manual review")
	assert.Contains(t, text, "Generated on: 2026-08-31 10:30:00 UTC")
}

func TestSynthesizeDetailOrder(t *testing.T) {
	doc := NewSynthesizerAt(fixedClock()).Synthesize(fraudAssessment(), "")

	wantPrefixes := []string{
		"Transaction ID: TXN-1001",
		"Date & Time: 2026-08-31 10:29:58 UTC",
		"Amount: 18999.00",
		"Payment Method: credit_card",
		"Category: electronics",
		"City: Mumbai",
		"Device: mobile",
		"Age: 22",
		"Hour: 2",
		"Day of Week: Saturday",
		"Item Quantity: 3",
		"Shipping Address: Different",
		"Browser: Chrome",
	}

	first := doc.Pages[0].Lines
	var got []string
	for _, l := range first {
		if l.Style == StyleBody && l.Y >= 50 && l.Y < 50+13*detailStep {
			got = append(got, l.Text)
		}
	}
	assert.Equal(t, wantPrefixes, got)

	// Details advance on a fixed 8-unit grid starting at 50.
	detail := findLine(doc, "Transaction ID:")
	require.NotNil(t, detail)
	assert.Equal(t, 50.0, detail.Y)
}

func TestSynthesizeDeterministic(t *testing.T) {
	s := NewSynthesizerAt(fixedClock())
	a := fraudAssessment()

	assert.Equal(t, s.Synthesize(a, "x"), s.Synthesize(a, "x"))
}

func TestSynthesizePageBreak(t *testing.T) {
	a := fraudAssessment()
	a.Response.RiskFactors = nil
	for i := 0; i < 40; i++ {
		a.Response.RiskFactors = append(a.Response.RiskFactors,
			fmt.Sprintf("Synthetic risk factor number %d observed during scoring of this transaction", i+1))
	}

	doc := NewSynthesizerAt(fixedClock()).Synthesize(a, "")
	require.Greater(t, len(doc.Pages), 1, "forty factors must overflow one page")

	// Flowed lines never land below the bottom margin.
	for _, l := range allLines(doc) {
		if l.Style == StyleFooter {
			continue
		}
		assert.LessOrEqual(t, l.Y, BottomMargin)
	}

	// Continuation pages restart at the top margin.
	for _, p := range doc.Pages[1:] {
		require.NotEmpty(t, p.Lines)
		assert.Equal(t, TopMargin, p.Lines[0].Y)
	}

	// Footer appears on the final page only.
	for i, p := range doc.Pages {
		var footers int
		for _, l := range p.Lines {
			if l.Style == StyleFooter {
				footers++
			}
		}
		if i == len(doc.Pages)-1 {
			assert.Equal(t, 2, footers)
		} else {
			assert.Zero(t, footers)
		}
	}
}

func TestSynthesizeNoRiskFactors(t *testing.T) {
	a := fraudAssessment()
	a.Response.IsFraud = false
	a.Response.RiskFactors = nil
	a.Response.RiskLevel = "Low"

	doc := NewSynthesizerAt(fixedClock()).Synthesize(a, "")
	text := string(doc.Bytes())

	assert.Contains(t, text, "No specific risk factors identified")
	assert.Contains(t, text, "Verdict: LEGITIMATE TRANSACTION")
	assert.Contains(t, text, "- Continue normal processing")
	assert.NotContains(t, text, "1. ")
}

func TestWrap(t *testing.T) {
	long := strings.Repeat("factor ", 30) // 209 chars
	lines := wrap(long)
	require.Greater(t, len(lines), 1)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), maxLineChars)
	}
	assert.Equal(t, strings.Fields(long), strings.Fields(strings.Join(lines, " ")))
}
