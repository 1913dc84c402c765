package qualification

// State tracks one conversation's position in the qualification flow.
// Progress is a monotonically non-decreasing cursor in [0,7]; there are
// no backward transitions. A message that yields no usable extraction
// leaves the state untouched, implicitly re-asking the same question.
type State struct {
	Progress          int     `json:"qualification_progress"`
	Answers           Answers `json:"answers"`
	IsQualified       bool    `json:"is_qualified"`
	AppointmentBooked bool    `json:"appointment_booked"`
}

// NewState returns the initial state for a fresh session.
func NewState() State {
	return State{}
}

// Complete reports whether every question slot has been consumed.
func (s State) Complete() bool {
	return s.Progress >= TotalQuestions
}

// Apply folds extracted answers into the state. Only a value for the
// currently pending question's field advances the cursor; values for
// other fields are still recorded (they arrived out of order and their
// slots will be skipped later). Returns true when the cursor moved.
func (s *State) Apply(extracted Answers) bool {
	pending := NextQuestion(s.Progress, s.Answers)
	if pending == nil {
		s.Answers = s.Answers.Merge(extracted)
		return false
	}

	advanced := extracted.Has(pending.Field)
	s.Answers = s.Answers.Merge(extracted)
	if advanced {
		s.Progress++
	}
	return advanced
}

// MarkQualified latches the qualified flag. It is never cleared.
func (s *State) MarkQualified() {
	s.IsQualified = true
}

// MarkBooked latches the appointment-booked flag.
func (s *State) MarkBooked() {
	s.AppointmentBooked = true
}
