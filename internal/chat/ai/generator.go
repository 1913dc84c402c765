package ai

import (
	"context"
	"fmt"
	"strings"

	"provision_chat_backend/internal/chat/knowledge"
)

// FallbackReply is returned when the generator is unavailable. The chat
// surface must always answer with something well-formed.
const FallbackReply = "I apologize, but I'm having a brief technical issue. " +
	"Let me connect you with one of our advisors who can help. " +
	"Would you like to schedule a call, or would you prefer to call us at 1-800-XXX-XXXX?"

// ReplyContext is the conversation context handed to the generator.
type ReplyContext struct {
	Progress          int
	Answers           map[string]string
	LeadScore         int
	Tier              string
	AppointmentBooked bool
	// Recommendation is the advisor hand-off copy for the lead's tier,
	// set once the visitor qualifies so the model can steer the close.
	Recommendation string
}

// Generator produces assistant replies via Groq.
type Generator struct {
	client        *Client
	historyWindow int
}

// NewGenerator creates a reply generator. historyWindow bounds how many
// trailing history messages are sent with each request.
func NewGenerator(client *Client, historyWindow int) *Generator {
	if historyWindow <= 0 {
		historyWindow = 10
	}
	return &Generator{client: client, historyWindow: historyWindow}
}

// Generate produces a reply for the user's message given recent history
// and the qualification context. The caller is responsible for the
// fallback path when an error is returned.
func (g *Generator) Generate(ctx context.Context, userMessage string, history []Message, rc ReplyContext) (string, error) {
	messages := make([]Message, 0, g.historyWindow+3)
	messages = append(messages, Message{Role: "system", Content: systemPrompt()})

	if len(history) > g.historyWindow {
		history = history[len(history)-g.historyWindow:]
	}
	messages = append(messages, history...)

	if contextMsg := buildContextMessage(rc); contextMsg != "" {
		messages = append(messages, Message{Role: "system", Content: contextMsg})
	}

	messages = append(messages, Message{Role: "user", Content: userMessage})

	return g.client.ChatCompletion(ctx, messages, 0.7, 500)
}

func systemPrompt() string {
	return "You are a warm, knowledgeable retirement-planning assistant for ProVision Brokerage. " +
		"Answer questions about retirement planning and annuities, guide visitors through the " +
		"qualification questions one at a time, and encourage booking a free consultation when " +
		"appropriate. Keep answers concise and never give specific investment, legal, or tax advice.\n\n" +
		knowledge.ContextSummary()
}

func buildContextMessage(rc ReplyContext) string {
	parts := make([]string, 0, 4)

	if rc.Progress > 0 {
		parts = append(parts, fmt.Sprintf("Qualification Progress: %d/7 questions answered", rc.Progress))
	}
	if len(rc.Answers) > 0 {
		parts = append(parts, "Known Information:")
		for key, value := range rc.Answers {
			parts = append(parts, fmt.Sprintf("- %s: %s", key, value))
		}
	}
	if rc.LeadScore > 0 {
		parts = append(parts, fmt.Sprintf("Lead Score: %d/100 (%s)", rc.LeadScore, rc.Tier))
	}
	if rc.AppointmentBooked {
		parts = append(parts, "Appointment already booked")
	}
	if rc.Recommendation != "" {
		parts = append(parts, "Suggested close: "+rc.Recommendation)
	}

	if len(parts) == 0 {
		return ""
	}
	return "CONTEXT: " + strings.Join(parts, "\n")
}
