package report

import (
	"fmt"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/present"
)

// Vertical steps between report sections.
const (
	detailStep       = 8.0
	sectionGap       = 10.0
	headingGap       = 15.0
	verdictStep      = 10.0
	probabilityStep  = 8.0
	riskLevelStep    = 15.0
	factorHeadingGap = 10.0
)

var dayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Synthesizer builds report documents. The clock is injectable so a
// given assessment always synthesizes to the same document in tests.
type Synthesizer struct {
	now func() time.Time
}

// NewSynthesizer returns a synthesizer using the wall clock.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{now: time.Now}
}

// NewSynthesizerAt returns a synthesizer with a fixed clock.
func NewSynthesizerAt(now func() time.Time) *Synthesizer {
	return &Synthesizer{now: now}
}

// Filename returns the download filename for a transaction's report.
func Filename(transactionID string) string {
	return "fraud-analysis-" + transactionID + ".txt"
}

// Synthesize builds the full report for one assessment. The analyst
// name brands the header; pass empty when no operator is signed in.
func (s *Synthesizer) Synthesize(a *domain.Assessment, analyst string) *Document {
	vm := present.Present(&a.Response)
	w := newWriter()

	w.write("Fraud Detection Analysis Report", StyleTitle, sectionGap)
	if analyst != "" {
		w.write("Prepared by: "+analyst, StyleBody, 0)
	}

	// Transaction details
	w.y = 40
	w.write("Transaction Details", StyleHeading, sectionGap)
	for _, d := range s.details(a) {
		w.write(d, StyleBody, detailStep)
	}

	// Analysis results
	w.skip(sectionGap)
	w.write("Analysis Results", StyleHeading, headingGap)
	w.write("Verdict: "+vm.Verdict, StyleBody, verdictStep)
	w.write("Fraud Probability: "+vm.Probability, StyleBody, probabilityStep)
	w.write("Risk Level: "+vm.RiskLevel, StyleBody, riskLevelStep)

	// Risk factors
	w.write("Risk Factors:", StyleHeading, factorHeadingGap)
	if vm.NoRiskFactors {
		w.write("No specific risk factors identified", StyleBody, LineHeight)
	} else {
		for i, factor := range vm.RiskFactors {
			for _, line := range wrap(fmt.Sprintf("%d. %s", i+1, factor)) {
				w.write(line, StyleBody, LineHeight)
			}
		}
	}

	// Recommendations
	w.skip(sectionGap)
	w.write("Recommendations:", StyleHeading, factorHeadingGap)
	for _, rec := range vm.Recommendations {
		for _, line := range wrap("- " + rec) {
			w.write(line, StyleBody, LineHeight)
		}
	}

	// Footer on the final page only.
	w.writeAt(FooterY, "Generated on: "+s.now().UTC().Format("2006-01-02 15:04:05 MST"), StyleFooter)
	w.writeAt(ConfidentialY, "This report is confidential and intended for internal use only", StyleFooter)

	w.doc.Filename = Filename(a.Response.TransactionID)
	return w.doc
}

// details returns the fixed-order transaction detail lines.
func (s *Synthesizer) details(a *domain.Assessment) []string {
	in := &a.Input

	day := ""
	if in.DayOfWeek >= 0 && in.DayOfWeek < len(dayNames) {
		day = dayNames[in.DayOfWeek]
	}

	return []string{
		"Transaction ID: " + a.Response.TransactionID,
		"Date & Time: " + a.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST"),
		"Amount: " + in.Amount.StringFixed(2),
		"Payment Method: " + in.PaymentMethod,
		"Category: " + in.Category,
		"City: " + in.City,
		"Device: " + in.Device,
		fmt.Sprintf("Age: %d", in.Age),
		fmt.Sprintf("Hour: %d", in.Hour),
		"Day of Week: " + day,
		fmt.Sprintf("Item Quantity: %d", in.ItemQuantity),
		"Shipping Address: " + in.ShippingAddress,
		"Browser: " + in.Browser,
	}
}
