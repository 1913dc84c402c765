package qualification

// Tier is the lead classification derived from the score.
type Tier string

const (
	TierHighValue Tier = "High Value"
	TierQualified Tier = "Qualified"
	TierWarm      Tier = "Warm"
	TierCold      Tier = "Cold"
)

// Thresholds are the ascending tier cut-offs. Each tier is inclusive on
// its lower bound: score >= High is High Value, >= Qualified is Qualified,
// >= Warm is Warm, anything below is Cold.
type Thresholds struct {
	High      int
	Qualified int
	Warm      int
}

// DefaultThresholds matches the production configuration.
var DefaultThresholds = Thresholds{High: 80, Qualified: 60, Warm: 40}

// Valid reports whether the thresholds are strictly ordered and positive.
func (t Thresholds) Valid() bool {
	return t.High > t.Qualified && t.Qualified > t.Warm && t.Warm > 0
}

// Per-field point tables. Unrecognized or missing values contribute 0.
// Some fields carry short label variants sent by older chat clients.
var (
	ageScores = map[string]int{
		"20-30": 15,
		"31-50": 20,
		"51-65": 28,
		"65+":   30,
	}

	timelineScores = map[string]int{
		"Already retired": 30,
		"1-5 years":       28,
		"6-10 years":      22,
		"11-15 years":     18,
		"15+ years":       15,
	}

	assetScores = map[string]int{
		"Less than $100k":   20,
		"$100k-$500k":       30,
		"$500k-$1M":         38,
		"Over $1M":          40,
		"Prefer not to say": 25,
		"<$100k":            20,
		">$1M":              40,
	}

	annuityScores = map[string]int{
		"Yes":      10,
		"No":       20,
		"Not sure": 15,
	}

	concernScores = map[string]int{
		"Guaranteed income":  25,
		"Market risk":        24,
		"Outliving my money": 25,
		"Healthcare costs":   20,
		"Taxes":              18,
		"Leaving a legacy":   15,
		"Outliving money":    25,
		"Legacy":             15,
	}

	goalScores = map[string]int{
		"Maintain current lifestyle": 28,
		"Travel":                     25,
		"Support family":             22,
		"Start a business":           18,
		"Charitable giving":          20,
		"Other":                      15,
		"Maintain lifestyle":         28,
	}
)

// Score computes the weighted lead score for a partial or complete answer
// set. It is pure and total: absent fields contribute 0, and the sum is
// clamped at 100. The six field maxima intentionally sum above 100 so a
// lead with strong partial answers is not penalized proportionally for
// fields still unknown.
func Score(answers Answers) int {
	score := 0
	score += ageScores[answers.AgeRange]
	score += timelineScores[answers.RetirementTimeline]
	score += assetScores[answers.InvestableAssets]
	score += annuityScores[answers.CurrentAnnuity]
	score += concernScores[answers.Concerns]
	score += goalScores[answers.Goals]

	if score > 100 {
		return 100
	}
	return score
}

// Classify maps a score to a tier using the given thresholds.
func Classify(score int, t Thresholds) Tier {
	switch {
	case score >= t.High:
		return TierHighValue
	case score >= t.Qualified:
		return TierQualified
	case score >= t.Warm:
		return TierWarm
	default:
		return TierCold
	}
}

// ShouldOfferAppointment decides when the assistant pivots from asking
// questions to offering a booking. Two deliberate paths:
//
//  1. the flow is complete (all 7 questions asked), regardless of score;
//  2. at least 4 questions are in and the partial score already clears the
//     Qualified threshold.
//
// The second clause is an intentional fast-track for high-signal partial
// answers and must not be collapsed into "wait for all 7".
func ShouldOfferAppointment(score, progress int, t Thresholds) bool {
	if progress >= TotalQuestions {
		return true
	}
	if progress >= 4 && score >= t.Qualified {
		return true
	}
	return false
}
