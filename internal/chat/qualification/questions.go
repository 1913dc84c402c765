package qualification

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var questionsYAML []byte

// TotalQuestions is the length of the fixed qualification flow.
const TotalQuestions = 7

// Question is one entry of the static question bank. The bank order is the
// mandatory asking order.
type Question struct {
	ID        int      `json:"id" yaml:"id"`
	Field     string   `json:"field" yaml:"field"`
	Prompt    string   `json:"question" yaml:"prompt"`
	Options   []string `json:"options,omitempty" yaml:"options"`
	Rationale string   `json:"context,omitempty" yaml:"rationale"`
}

var questionBank = mustLoadQuestions()

func mustLoadQuestions() []Question {
	var doc struct {
		Questions []Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(questionsYAML, &doc); err != nil {
		panic(fmt.Sprintf("qualification: invalid question bank: %v", err))
	}
	if len(doc.Questions) != TotalQuestions {
		panic(fmt.Sprintf("qualification: expected %d questions, got %d", TotalQuestions, len(doc.Questions)))
	}
	return doc.Questions
}

// Questions returns the full question bank in asking order.
func Questions() []Question {
	bank := make([]Question, len(questionBank))
	copy(bank, questionBank)
	return bank
}

// NextQuestion returns the question to ask at the given progress cursor,
// or nil when the flow is complete (progress >= TotalQuestions).
//
// Progress is a pure position cursor into the bank, not a count of known
// fields: when the question at the cursor covers a field that was already
// answered out of order, the cursor slides forward past it. That shift is
// permanent for the rest of the flow, so the served sequence depends on
// when a field was learned. Callers must not substitute a missing-field
// lookup here.
func NextQuestion(progress int, answers Answers) *Question {
	if progress >= TotalQuestions {
		return nil
	}

	question := questionBank[progress]
	if answers.Has(question.Field) {
		return NextQuestion(progress+1, answers)
	}

	return &question
}
