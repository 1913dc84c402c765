package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"provision_chat_backend/internal/chat/qualification"
)

// Extractor pulls structured qualification answers out of free-form chat
// messages via a JSON-mode Groq call.
type Extractor struct {
	client *Client
}

// NewExtractor creates an answer extractor.
func NewExtractor(client *Client) *Extractor {
	return &Extractor{client: client}
}

const extractionSystemPrompt = "You are a data extraction assistant. Only return valid JSON."

const extractionPrompt = `Analyze this user message for retirement planning qualification information.
Extract any mentioned:
- Age or age range
- Retirement timeline
- Assets or savings amount
- Current annuity status
- Concerns (income, growth, legacy, taxes, healthcare)
- Goals (travel, family, business, charity)

User message: %s

Respond ONLY with valid JSON:
{
  "age_range": "31-50" or null,
  "retirement_timeline": "6-10 years" or null,
  "investable_assets": "$100k-$500k" or null,
  "current_annuity": "Yes" or null,
  "concerns": "Guaranteed income" or null,
  "goals": "Travel" or null
}`

// extractionResult mirrors the JSON the model is asked for. Pointers let
// explicit nulls and absent keys both read as "not mentioned".
type extractionResult struct {
	AgeRange           *string `json:"age_range"`
	RetirementTimeline *string `json:"retirement_timeline"`
	State              *string `json:"state"`
	InvestableAssets   *string `json:"investable_assets"`
	CurrentAnnuity     *string `json:"current_annuity"`
	Concerns           *string `json:"concerns"`
	Goals              *string `json:"goals"`
}

// Extract returns any qualification answers found in the message. A
// malformed model response reads as "nothing extracted", never an error;
// only transport failures surface as errors so the caller can log them.
func (e *Extractor) Extract(ctx context.Context, message string) (qualification.Answers, error) {
	content, err := e.client.ChatCompletion(ctx,
		[]Message{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(extractionPrompt, jsonQuote(message))},
		},
		0.1, 200,
	)
	if err != nil {
		return qualification.Answers{}, err
	}

	var result extractionResult
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &result); err != nil {
		return qualification.Answers{}, nil
	}

	var answers qualification.Answers
	setIfPresent(&answers, qualification.FieldAgeRange, result.AgeRange)
	setIfPresent(&answers, qualification.FieldRetirementTimeline, result.RetirementTimeline)
	setIfPresent(&answers, qualification.FieldState, result.State)
	setIfPresent(&answers, qualification.FieldInvestableAssets, result.InvestableAssets)
	setIfPresent(&answers, qualification.FieldCurrentAnnuity, result.CurrentAnnuity)
	setIfPresent(&answers, qualification.FieldConcerns, result.Concerns)
	setIfPresent(&answers, qualification.FieldGoals, result.Goals)
	return answers, nil
}

func setIfPresent(answers *qualification.Answers, field string, value *string) {
	if value == nil {
		return
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return
	}
	answers.Set(field, trimmed)
}

// stripCodeFences removes a markdown code fence the model sometimes wraps
// its JSON in.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func jsonQuote(s string) string {
	quoted, err := json.Marshal(s)
	if err != nil {
		return `"` + s + `"`
	}
	return string(quoted)
}
