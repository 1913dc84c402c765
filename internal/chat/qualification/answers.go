// Package qualification implements the lead-qualification flow: the fixed
// question bank, the progress state machine, and the weighted lead scoring.
package qualification

// Answer field names, in mandatory question order.
const (
	FieldAgeRange           = "age_range"
	FieldRetirementTimeline = "retirement_timeline"
	FieldState              = "state"
	FieldInvestableAssets   = "investable_assets"
	FieldCurrentAnnuity     = "current_annuity"
	FieldConcerns           = "concerns"
	FieldGoals              = "goals"
)

// Answers holds the qualification answers collected so far. All fields are
// optional and populated incrementally; an empty string means "not answered".
type Answers struct {
	AgeRange           string `json:"age_range,omitempty"`
	RetirementTimeline string `json:"retirement_timeline,omitempty"`
	State              string `json:"state,omitempty"`
	InvestableAssets   string `json:"investable_assets,omitempty"`
	CurrentAnnuity     string `json:"current_annuity,omitempty"`
	Concerns           string `json:"concerns,omitempty"`
	Goals              string `json:"goals,omitempty"`
}

// Get returns the value for a field name, or "" for unknown fields.
func (a Answers) Get(field string) string {
	switch field {
	case FieldAgeRange:
		return a.AgeRange
	case FieldRetirementTimeline:
		return a.RetirementTimeline
	case FieldState:
		return a.State
	case FieldInvestableAssets:
		return a.InvestableAssets
	case FieldCurrentAnnuity:
		return a.CurrentAnnuity
	case FieldConcerns:
		return a.Concerns
	case FieldGoals:
		return a.Goals
	}
	return ""
}

// Set assigns the value for a field name. Unknown fields are ignored.
func (a *Answers) Set(field, value string) {
	switch field {
	case FieldAgeRange:
		a.AgeRange = value
	case FieldRetirementTimeline:
		a.RetirementTimeline = value
	case FieldState:
		a.State = value
	case FieldInvestableAssets:
		a.InvestableAssets = value
	case FieldCurrentAnnuity:
		a.CurrentAnnuity = value
	case FieldConcerns:
		a.Concerns = value
	case FieldGoals:
		a.Goals = value
	}
}

// Has reports whether a field has been answered.
func (a Answers) Has(field string) bool {
	return a.Get(field) != ""
}

// Merge overlays non-empty fields from other onto a copy of a. Existing
// values are overwritten only when other carries a value (correction
// semantics); a field is never cleared.
func (a Answers) Merge(other Answers) Answers {
	merged := a
	for _, field := range fieldOrder {
		if value := other.Get(field); value != "" {
			merged.Set(field, value)
		}
	}
	return merged
}

// Map returns the answered fields keyed by field name.
func (a Answers) Map() map[string]string {
	out := make(map[string]string, TotalQuestions)
	for _, field := range fieldOrder {
		if value := a.Get(field); value != "" {
			out[field] = value
		}
	}
	return out
}

// Count returns the number of answered fields.
func (a Answers) Count() int {
	count := 0
	for _, field := range fieldOrder {
		if a.Has(field) {
			count++
		}
	}
	return count
}

var fieldOrder = []string{
	FieldAgeRange,
	FieldRetirementTimeline,
	FieldState,
	FieldInvestableAssets,
	FieldCurrentAnnuity,
	FieldConcerns,
	FieldGoals,
}
