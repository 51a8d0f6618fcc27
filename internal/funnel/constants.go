package funnel

// ─────────────────────────────────────────────────────────────────────────────
// Conversion Rate Bounds
// ─────────────────────────────────────────────────────────────────────────────

const (
	// MinConversionRatePct is the floor applied to every scaled conversion
	// rate. A rate of zero would make the lead count undefined.
	MinConversionRatePct = 0.01

	// MaxConversionRatePct is the ceiling applied to every scaled conversion
	// rate. An optimistic multiplier can push a high baseline past 100%.
	MaxConversionRatePct = 100.0
)

// ─────────────────────────────────────────────────────────────────────────────
// Scenario Multipliers
// ─────────────────────────────────────────────────────────────────────────────

const (
	PessimisticMultiplier = 0.7
	RealisticMultiplier   = 1.0
	OptimisticMultiplier  = 1.3
)

// maxCount bounds the sales and lead counts to the range where float64
// represents every integer exactly.
const maxCount = 1 << 53
