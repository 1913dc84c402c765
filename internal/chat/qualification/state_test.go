package qualification

import "testing"

func TestNextQuestion_CompleteFlowReturnsNil(t *testing.T) {
	if q := NextQuestion(7, Answers{}); q != nil {
		t.Fatalf("expected nil at progress 7, got question %d", q.ID)
	}
	if q := NextQuestion(9, Answers{}); q != nil {
		t.Fatalf("expected nil past end, got question %d", q.ID)
	}
}

func TestNextQuestion_FollowsBankOrder(t *testing.T) {
	fields := []string{
		FieldAgeRange,
		FieldRetirementTimeline,
		FieldState,
		FieldInvestableAssets,
		FieldCurrentAnnuity,
		FieldConcerns,
		FieldGoals,
	}

	for i, field := range fields {
		q := NextQuestion(i, Answers{})
		if q == nil {
			t.Fatalf("expected question at progress %d", i)
		}
		if q.Field != field {
			t.Fatalf("progress %d: expected field %q, got %q", i, field, q.Field)
		}
		if q.ID != i+1 {
			t.Fatalf("progress %d: expected id %d, got %d", i, i+1, q.ID)
		}
	}
}

func TestNextQuestion_SkipsAnsweredField(t *testing.T) {
	// State (slot index 2) already known out of order: its slot is skipped
	// and the cursor's question shifts to investable_assets.
	answers := Answers{State: "Florida"}

	q := NextQuestion(2, answers)
	if q == nil {
		t.Fatal("expected a question")
	}
	if q.Field != FieldInvestableAssets {
		t.Fatalf("expected answered slot to be skipped, got field %q", q.Field)
	}
}

func TestNextQuestion_NeverReturnsAnsweredField(t *testing.T) {
	answers := Answers{
		AgeRange:         "51-65",
		State:            "Texas",
		InvestableAssets: "$100k-$500k",
	}

	for progress := 0; progress <= TotalQuestions; progress++ {
		q := NextQuestion(progress, answers)
		if q == nil {
			continue
		}
		if answers.Has(q.Field) {
			t.Fatalf("progress %d returned already-answered field %q", progress, q.Field)
		}
	}
}

func TestStateApply_PendingFieldAdvancesCursor(t *testing.T) {
	state := NewState()

	advanced := state.Apply(Answers{AgeRange: "51-65"})
	if !advanced {
		t.Fatal("expected pending-field answer to advance the cursor")
	}
	if state.Progress != 1 {
		t.Fatalf("expected progress 1, got %d", state.Progress)
	}
	if state.Answers.AgeRange != "51-65" {
		t.Fatalf("expected answer recorded, got %q", state.Answers.AgeRange)
	}
}

func TestStateApply_EmptyExtractionHoldsPosition(t *testing.T) {
	state := NewState()
	state.Apply(Answers{AgeRange: "65+"})

	advanced := state.Apply(Answers{})
	if advanced {
		t.Fatal("expected empty extraction not to advance")
	}
	if state.Progress != 1 {
		t.Fatalf("expected progress to hold at 1, got %d", state.Progress)
	}
}

func TestStateApply_OutOfOrderFieldRecordedWithoutAdvance(t *testing.T) {
	state := NewState()

	// Goals is slot 7; answering it first must not move the cursor.
	advanced := state.Apply(Answers{Goals: "Travel"})
	if advanced {
		t.Fatal("expected out-of-order answer not to advance")
	}
	if state.Progress != 0 {
		t.Fatalf("expected progress 0, got %d", state.Progress)
	}
	if !state.Answers.Has(FieldGoals) {
		t.Fatal("expected out-of-order answer to be recorded")
	}
}

func TestStateApply_CorrectionOverwritesButNeverClears(t *testing.T) {
	state := NewState()
	state.Apply(Answers{AgeRange: "31-50"})

	state.Apply(Answers{AgeRange: "51-65"})
	if state.Answers.AgeRange != "51-65" {
		t.Fatalf("expected correction to overwrite, got %q", state.Answers.AgeRange)
	}
	if state.Answers.Count() != 1 {
		t.Fatalf("expected single answered field, got %d", state.Answers.Count())
	}
}

func TestStateApply_FullFlowCompletes(t *testing.T) {
	state := NewState()
	steps := []Answers{
		{AgeRange: "65+"},
		{RetirementTimeline: "Already retired"},
		{State: "Arizona"},
		{InvestableAssets: "Over $1M"},
		{CurrentAnnuity: "No"},
		{Concerns: "Outliving my money"},
		{Goals: "Maintain current lifestyle"},
	}

	for i, step := range steps {
		if !state.Apply(step) {
			t.Fatalf("step %d did not advance", i)
		}
	}

	if !state.Complete() {
		t.Fatalf("expected complete flow, progress %d", state.Progress)
	}
	if got := Score(state.Answers); got != 100 {
		t.Fatalf("expected maximal flow to score 100, got %d", got)
	}
}

func TestStateApply_AfterCompleteStillMerges(t *testing.T) {
	state := State{Progress: TotalQuestions}

	advanced := state.Apply(Answers{Goals: "Travel"})
	if advanced {
		t.Fatal("expected no advance past the terminal state")
	}
	if state.Progress != TotalQuestions {
		t.Fatalf("expected progress to stay %d, got %d", TotalQuestions, state.Progress)
	}
	if !state.Answers.Has(FieldGoals) {
		t.Fatal("expected late answer to be recorded")
	}
}
