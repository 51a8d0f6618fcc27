package funnel

import "fmt"

// ScenarioKind identifies one of the three projection scenarios.
type ScenarioKind int

const (
	Pessimistic ScenarioKind = iota
	Realistic
	Optimistic
)

// String returns the display name of the scenario.
func (k ScenarioKind) String() string {
	switch k {
	case Pessimistic:
		return "Pessimistic"
	case Realistic:
		return "Realistic"
	case Optimistic:
		return "Optimistic"
	default:
		return fmt.Sprintf("ScenarioKind(%d)", int(k))
	}
}

// MarshalText encodes the scenario by name so reports serialize readably.
func (k ScenarioKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a scenario name written by MarshalText.
func (k *ScenarioKind) UnmarshalText(text []byte) error {
	for _, sc := range scenarios {
		if sc.Kind.String() == string(text) {
			*k = sc.Kind
			return nil
		}
	}
	return fmt.Errorf("unknown scenario %q", text)
}

// Scenario pairs a scenario with the multiplier applied to the baseline
// conversion rate.
type Scenario struct {
	Kind       ScenarioKind
	Multiplier float64
}

// scenarios is the closed, ordered scenario set.
var scenarios = [3]Scenario{
	{Kind: Pessimistic, Multiplier: PessimisticMultiplier},
	{Kind: Realistic, Multiplier: RealisticMultiplier},
	{Kind: Optimistic, Multiplier: OptimisticMultiplier},
}

// Scenarios returns the three scenarios in their fixed order:
// Pessimistic, Realistic, Optimistic.
func Scenarios() [3]Scenario {
	return scenarios
}

// clampRate confines a scaled conversion rate to
// [MinConversionRatePct, MaxConversionRatePct].
func clampRate(pct float64) float64 {
	if pct > MaxConversionRatePct {
		return MaxConversionRatePct
	}
	if pct < MinConversionRatePct {
		return MinConversionRatePct
	}
	return pct
}
