package config

import (
	"math"

	apperrors "github.com/agbru/funnelcalc/internal/errors"
	"github.com/agbru/funnelcalc/internal/funnel"
)

// InputField describes one funnel input as presented by the interactive
// front ends: its keys, label and the bounds used when stepping the value.
type InputField struct {
	// Key is the funnel.Field* name used in errors and plan files.
	Key string
	// Flag is the command-line flag name.
	Flag string
	// EnvKey is the environment variable suffix after EnvPrefix.
	EnvKey string
	Label  string
	Min    float64
	// Max is math.Inf(1) when the field has no upper bound.
	Max  float64
	Step float64
	// Enforced marks the fields whose bounds callers must check before
	// computing. The other bounds only limit stepping.
	Enforced bool

	Get func(funnel.Input) float64
	Set func(*funnel.Input, float64)
}

var (
	RevenueField = InputField{
		Key: funnel.FieldDesiredRevenue, Flag: "revenue", EnvKey: "REVENUE",
		Label: "Desired revenue (R$)", Min: 1000, Max: math.Inf(1), Step: 1000,
		Get: func(in funnel.Input) float64 { return in.DesiredRevenue },
		Set: func(in *funnel.Input, v float64) { in.DesiredRevenue = v },
	}
	BudgetField = InputField{
		Key: funnel.FieldMediaBudget, Flag: "budget", EnvKey: "BUDGET",
		Label: "Media budget (R$)", Min: 0, Max: math.Inf(1), Step: 1000, Enforced: true,
		Get: func(in funnel.Input) float64 { return in.MediaBudget },
		Set: func(in *funnel.Input, v float64) { in.MediaBudget = v },
	}
	TicketField = InputField{
		Key: funnel.FieldAverageTicket, Flag: "ticket", EnvKey: "TICKET",
		Label: "Average ticket (R$)", Min: 1, Max: math.Inf(1), Step: 10,
		Get: func(in funnel.Input) float64 { return in.AverageTicket },
		Set: func(in *funnel.Input, v float64) { in.AverageTicket = v },
	}
	RateField = InputField{
		Key: funnel.FieldBaselineConversionRate, Flag: "rate", EnvKey: "RATE",
		Label: "Realistic conversion rate (%)", Min: 0.1, Max: 100, Step: 0.1, Enforced: true,
		Get: func(in funnel.Input) float64 { return in.BaselineConversionRate },
		Set: func(in *funnel.Input, v float64) { in.BaselineConversionRate = v },
	}
)

// InputFields lists the inputs in form order.
var InputFields = []InputField{RevenueField, BudgetField, TicketField, RateField}

// Clamp bounds v to the field's range.
func (f InputField) Clamp(v float64) float64 {
	return math.Min(math.Max(v, f.Min), f.Max)
}

// StepBy moves v by n steps and clamps the result. The value is rounded to
// the step's precision so that repeated 0.1 increments stay on the grid.
func (f InputField) StepBy(v float64, n int) float64 {
	next := v + float64(n)*f.Step
	if f.Step < 1 {
		scale := math.Round(1 / f.Step)
		next = math.Round(next*scale) / scale
	}
	return f.Clamp(next)
}

// CheckRange returns a ConfigError when the field is Enforced and v lies
// outside its bounds.
func (f InputField) CheckRange(v float64) error {
	if !f.Enforced || (v >= f.Min && v <= f.Max) {
		return nil
	}
	if math.IsInf(f.Max, 1) {
		return apperrors.NewConfigError("%s must be at least %g, got %g", f.Key, f.Min, v)
	}
	return apperrors.NewConfigError("%s must be between %g and %g, got %g", f.Key, f.Min, f.Max, v)
}

// CheckInput applies CheckRange to every field of in.
func CheckInput(in funnel.Input) error {
	for _, f := range InputFields {
		if err := f.CheckRange(f.Get(in)); err != nil {
			return err
		}
	}
	return nil
}

// FieldByKey returns the field registered under key.
func FieldByKey(key string) (InputField, bool) {
	for _, f := range InputFields {
		if f.Key == key {
			return f, true
		}
	}
	return InputField{}, false
}
