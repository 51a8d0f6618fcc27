package funnel

import (
	"math"

	apperrors "github.com/agbru/funnelcalc/internal/errors"
)

// Input field names used in validation errors and serialized reports.
const (
	FieldDesiredRevenue         = "desired_revenue"
	FieldMediaBudget            = "media_budget"
	FieldAverageTicket          = "average_ticket"
	FieldBaselineConversionRate = "baseline_conversion_rate"
)

// Input holds the four caller-supplied values of a projection.
// Monetary values are in currency units; the conversion rate is a percentage.
type Input struct {
	DesiredRevenue         float64 `json:"desired_revenue" yaml:"desired_revenue"`
	MediaBudget            float64 `json:"media_budget" yaml:"media_budget"`
	AverageTicket          float64 `json:"average_ticket" yaml:"average_ticket"`
	BaselineConversionRate float64 `json:"baseline_conversion_rate" yaml:"conversion_rate"`
}

// ScenarioResult is the projection for a single scenario.
type ScenarioResult struct {
	Scenario          ScenarioKind `json:"scenario"`
	ConversionRatePct float64      `json:"conversion_rate_pct"`
	RequiredSales     int64        `json:"required_sales"`
	RequiredLeads     int64        `json:"required_leads"`
	MaxCPL            float64      `json:"max_cpl"`
}

// Summary is the headline taken from the Realistic scenario.
// ROAS is only meaningful when ROASDefined is true (a positive media budget).
type Summary struct {
	RequiredSales int64   `json:"required_sales"`
	RequiredLeads int64   `json:"required_leads"`
	MaxCPL        float64 `json:"max_cpl"`
	ROAS          float64 `json:"roas"`
	ROASDefined   bool    `json:"roas_defined"`
}

// Report is the full result of one evaluation: the inputs it was computed
// from, one row per scenario in fixed order, and the summary.
type Report struct {
	Input     Input             `json:"input"`
	Scenarios [3]ScenarioResult `json:"scenarios"`
	Summary   Summary           `json:"summary"`
}

// Row returns the result row for the given scenario.
func (r Report) Row(kind ScenarioKind) ScenarioResult {
	for _, row := range r.Scenarios {
		if row.Scenario == kind {
			return row
		}
	}
	return ScenarioResult{}
}

// Calculator computes funnel reports. Presentation layers depend on this
// interface so a calculator can be substituted in tests.
type Calculator interface {
	Compute(in Input) (Report, error)
}

// CalculatorFunc adapts a plain function to the Calculator interface.
type CalculatorFunc func(in Input) (Report, error)

// Compute calls f(in).
func (f CalculatorFunc) Compute(in Input) (Report, error) {
	return f(in)
}

// Default is the production calculator.
var Default Calculator = CalculatorFunc(Compute)

// Compute validates the input and projects the funnel for every scenario.
//
// The average ticket is checked before the desired revenue; both must be
// strictly positive. Any non-finite input is rejected. The media budget and
// the baseline conversion rate are not range-checked: a non-positive budget
// yields a zero CPL and an undefined ROAS, and scaled conversion rates are
// clamped into [MinConversionRatePct, MaxConversionRatePct].
//
// Errors are apperrors.ValidationError values, which match
// apperrors.ErrInvalidInput.
func Compute(in Input) (Report, error) {
	if err := validate(in); err != nil {
		return Report{}, err
	}

	sales := math.Ceil(in.DesiredRevenue / in.AverageTicket)
	if sales > maxCount {
		return Report{}, apperrors.NewValidationError(FieldDesiredRevenue, "is too large for the average ticket")
	}

	report := Report{Input: in}
	for i, sc := range scenarios {
		rate := clampRate(in.BaselineConversionRate * sc.Multiplier)
		// sales*100/rate equals sales/(rate/100) but avoids the inexact
		// intermediate fraction, which could push ceil one lead too high.
		leads := math.Ceil(sales * 100 / rate)
		if leads > maxCount {
			return Report{}, apperrors.NewValidationError(FieldDesiredRevenue, "requires more leads than can be represented")
		}

		var cpl float64
		if in.MediaBudget > 0 && leads > 0 {
			cpl = in.MediaBudget / leads
		}

		report.Scenarios[i] = ScenarioResult{
			Scenario:          sc.Kind,
			ConversionRatePct: rate,
			RequiredSales:     int64(sales),
			RequiredLeads:     int64(leads),
			MaxCPL:            cpl,
		}
	}

	realistic := report.Row(Realistic)
	report.Summary = Summary{
		RequiredSales: realistic.RequiredSales,
		RequiredLeads: realistic.RequiredLeads,
		MaxCPL:        realistic.MaxCPL,
	}
	if in.MediaBudget > 0 {
		report.Summary.ROAS = in.DesiredRevenue / in.MediaBudget
		report.Summary.ROASDefined = true
	}
	return report, nil
}

func validate(in Input) error {
	fields := []struct {
		name  string
		value float64
	}{
		{FieldDesiredRevenue, in.DesiredRevenue},
		{FieldMediaBudget, in.MediaBudget},
		{FieldAverageTicket, in.AverageTicket},
		{FieldBaselineConversionRate, in.BaselineConversionRate},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return apperrors.NewValidationError(f.name, "must be a finite number")
		}
	}

	if in.AverageTicket <= 0 {
		return apperrors.NewValidationError(FieldAverageTicket, "must be positive")
	}
	if in.DesiredRevenue <= 0 {
		return apperrors.NewValidationError(FieldDesiredRevenue, "must be positive")
	}
	return nil
}
