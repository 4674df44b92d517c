// Package panel defines the reference-panel enumerations and the qualitative
// labels shared by every layer of the predictor.  No logic beyond parsing and
// the fixed classification thresholds lives here.
package panel

import "strings"

// ─────────────────────────────────────────────────────────────────────────────
// Type: reference drug-response panel
// ─────────────────────────────────────────────────────────────────────────────

// Type identifies which reference drug-response dataset produced the
// Response Matrix.  It decides the identifier header level, the alignment
// policy, and the long-table output mode.
type Type string

const (
	// PRISM responses are AUC values; the stored value is one minus potency.
	PRISM Type = "PRISM"

	// GDSC responses are IC50 values reported as-is.
	GDSC Type = "GDSC"
)

// String returns the selector text.
func (t Type) String() string { return string(t) }

// IsValid reports whether t is one of the supported panels.
func (t Type) IsValid() bool {
	switch t {
	case PRISM, GDSC:
		return true
	}
	return false
}

// Parse converts a selector into a Type.  Matching is exact after trimming
// whitespace; the second return value is false for unsupported selectors.
func Parse(s string) (Type, bool) {
	t := Type(strings.TrimSpace(s))
	return t, t.IsValid()
}

// All returns the supported panels in a stable order.
func All() []Type { return []Type{PRISM, GDSC} }

// ValueColumn is the long-table column header carrying the prediction.
func (t Type) ValueColumn() string {
	switch t {
	case PRISM:
		return "AUC prediction"
	case GDSC:
		return "IC50 prediction"
	}
	return ""
}

// Classified reports whether long-table rows carry a Classification.
func (t Type) Classified() bool { return t == PRISM }

// ─────────────────────────────────────────────────────────────────────────────
// Classification: three-way PRISM label
// ─────────────────────────────────────────────────────────────────────────────

// Classification is the qualitative label derived from a PRISM prediction.
type Classification string

const (
	Potential Classification = "potential"
	Unclear   Classification = "unclear"
	Inactive  Classification = "inactive"
)

// Potency thresholds applied to 1 − value.
const (
	PotentialThreshold = 0.6
	InactiveThreshold  = 0.2
)

// Classify labels a stored PRISM value.  The derived potency is 1 − value:
// above 0.6 is potential, below 0.2 is inactive, anything else is unclear.
func Classify(value float64) Classification {
	potency := 1 - value
	switch {
	case potency > PotentialThreshold:
		return Potential
	case potency < InactiveThreshold:
		return Inactive
	default:
		return Unclear
	}
}
