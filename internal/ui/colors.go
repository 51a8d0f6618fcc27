package ui

import "github.com/agbru/funnelcalc/internal/funnel"

// ColorPrimary returns the escape code for headings.
func ColorPrimary() string { return GetCurrentTheme().Primary }

// ColorMuted returns the escape code for labels.
func ColorMuted() string { return GetCurrentTheme().Muted }

// ColorRed returns the escape code for errors.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorBold returns the escape code for bold text.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the escape code for underlined text.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// ColorReset returns the escape code that clears formatting.
func ColorReset() string { return GetCurrentTheme().Reset }

// ScenarioColor returns the escape code of a scenario column:
// red for pessimistic, yellow for realistic, green for optimistic.
func ScenarioColor(kind funnel.ScenarioKind) string {
	t := GetCurrentTheme()
	switch kind {
	case funnel.Pessimistic:
		return t.Pessimistic
	case funnel.Optimistic:
		return t.Optimistic
	default:
		return t.Realistic
	}
}
