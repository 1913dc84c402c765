package qualification

import "testing"

func TestScore_EmptyAnswersIsZero(t *testing.T) {
	if got := Score(Answers{}); got != 0 {
		t.Fatalf("expected empty answers to score 0, got %d", got)
	}
}

func TestScore_MaximalAnswersClampedTo100(t *testing.T) {
	answers := Answers{
		AgeRange:           "65+",
		RetirementTimeline: "Already retired",
		InvestableAssets:   "Over $1M",
		CurrentAnnuity:     "No",
		Concerns:           "Outliving my money",
		Goals:              "Maintain current lifestyle",
	}

	// Raw sum is 30+30+40+20+25+28 = 173; the engine clamps at 100.
	if got := Score(answers); got != 100 {
		t.Fatalf("expected clamped score 100, got %d", got)
	}
}

func TestScore_PartialAnswersSumTables(t *testing.T) {
	answers := Answers{
		AgeRange:         "51-65",
		InvestableAssets: "$500k-$1M",
	}

	if got := Score(answers); got != 28+38 {
		t.Fatalf("expected score %d, got %d", 28+38, got)
	}
}

func TestScore_UnrecognizedValuesContributeZero(t *testing.T) {
	answers := Answers{
		AgeRange: "ninety",
		Concerns: "the weather",
	}

	if got := Score(answers); got != 0 {
		t.Fatalf("expected unrecognized values to score 0, got %d", got)
	}
}

func TestScore_ShortLabelVariants(t *testing.T) {
	long := Answers{InvestableAssets: "Over $1M", Concerns: "Outliving my money"}
	short := Answers{InvestableAssets: ">$1M", Concerns: "Outliving money"}

	if Score(long) != Score(short) {
		t.Fatalf("expected short label variants to score like long labels: %d vs %d", Score(long), Score(short))
	}
}

func TestScore_Idempotent(t *testing.T) {
	answers := Answers{
		AgeRange:           "31-50",
		RetirementTimeline: "6-10 years",
		CurrentAnnuity:     "Not sure",
	}

	first := Score(answers)
	second := Score(answers)
	if first != second {
		t.Fatalf("expected identical scores on repeat calls, got %d then %d", first, second)
	}
}

func TestClassify_ThresholdBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  Tier
	}{
		{100, TierHighValue},
		{80, TierHighValue},
		{79, TierQualified},
		{60, TierQualified},
		{59, TierWarm},
		{40, TierWarm},
		{39, TierCold},
		{0, TierCold},
	}

	for _, tc := range cases {
		if got := Classify(tc.score, DefaultThresholds); got != tc.want {
			t.Fatalf("Classify(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestClassify_CustomThresholds(t *testing.T) {
	custom := Thresholds{High: 90, Qualified: 70, Warm: 50}

	if got := Classify(85, custom); got != TierQualified {
		t.Fatalf("expected 85 to be Qualified under custom thresholds, got %q", got)
	}
}

func TestThresholds_Valid(t *testing.T) {
	if !DefaultThresholds.Valid() {
		t.Fatal("expected default thresholds to be valid")
	}
	if (Thresholds{High: 60, Qualified: 60, Warm: 40}).Valid() {
		t.Fatal("expected equal High/Qualified thresholds to be invalid")
	}
	if (Thresholds{High: 80, Qualified: 60, Warm: 0}).Valid() {
		t.Fatal("expected zero Warm threshold to be invalid")
	}
}

func TestShouldOfferAppointment(t *testing.T) {
	cases := []struct {
		score    int
		progress int
		want     bool
	}{
		{0, 7, true},   // complete flow always offers
		{70, 4, true},  // fast-track: 4+ questions and qualified score
		{50, 4, false}, // 4 questions but below qualified threshold
		{70, 3, false}, // qualified score but too few questions
		{100, 0, false},
	}

	for _, tc := range cases {
		got := ShouldOfferAppointment(tc.score, tc.progress, DefaultThresholds)
		if got != tc.want {
			t.Fatalf("ShouldOfferAppointment(score=%d, progress=%d) = %v, want %v", tc.score, tc.progress, got, tc.want)
		}
	}
}
