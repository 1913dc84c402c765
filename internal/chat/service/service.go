// Package service implements the chat orchestrator: it coordinates
// extraction, qualification, lead capture, reply generation, and
// appointment booking for every inbound message.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"provision_chat_backend/internal/calendar"
	"provision_chat_backend/internal/chat/ai"
	"provision_chat_backend/internal/chat/knowledge"
	"provision_chat_backend/internal/chat/qualification"
	"provision_chat_backend/internal/chat/repository"
	"provision_chat_backend/internal/chat/transport"
	"provision_chat_backend/internal/events"
	"provision_chat_backend/platform/apperr"
	"provision_chat_backend/platform/logger"
	"provision_chat_backend/platform/phone"
)

const (
	defaultChannel   = "web"
	historyWindow    = 10
	transcriptLimit  = 200
	fallbackLeadName = "Unknown"
)

// Service is the chat orchestrator.
type Service struct {
	repo       repository.Repository
	extractor  Extractor
	generator  ReplyGenerator
	booking    BookingClient
	leads      LeadStore
	bus        events.Bus
	thresholds qualification.Thresholds
	log        *logger.Logger
}

// New creates the chat orchestrator.
func New(
	repo repository.Repository,
	extractor Extractor,
	generator ReplyGenerator,
	booking BookingClient,
	leads LeadStore,
	bus events.Bus,
	thresholds qualification.Thresholds,
	log *logger.Logger,
) *Service {
	if !thresholds.Valid() {
		thresholds = qualification.DefaultThresholds
	}
	return &Service{
		repo:       repo,
		extractor:  extractor,
		generator:  generator,
		booking:    booking,
		leads:      leads,
		bus:        bus,
		thresholds: thresholds,
		log:        log,
	}
}

// ProcessMessage runs one full chat turn. The response is always
// well-formed: collaborator failures degrade the reply but never surface
// as an error to the caller, only storage failures do.
func (s *Service) ProcessMessage(ctx context.Context, req transport.ProcessMessageRequest) (*transport.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apperr.Validation("message is required")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	channel := req.Channel
	if channel == "" {
		channel = defaultChannel
	}
	log := s.log.WithSessionID(sessionID)

	conv, err := s.repo.GetConversation(ctx, sessionID)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			log.DatabaseError("get_conversation", err)
			return nil, apperr.Wrap(apperr.KindInternal, "failed to load conversation", err)
		}
		conv, err = s.repo.CreateConversation(ctx, sessionID, channel)
		if err != nil {
			log.DatabaseError("create_conversation", err)
			return nil, apperr.Wrap(apperr.KindInternal, "failed to create conversation", err)
		}
	}

	if err := s.repo.AppendMessage(ctx, sessionID, "user", message); err != nil {
		log.DatabaseError("append_user_message", err)
		return nil, apperr.Wrap(apperr.KindInternal, "failed to store message", err)
	}

	history, err := s.repo.ListMessages(ctx, sessionID, historyWindow)
	if err != nil {
		// Reply generation still works without history.
		log.DatabaseError("list_messages", err)
		history = nil
	}

	intent := knowledge.MatchIntent(message)
	state := conv.State

	if !state.Complete() {
		extracted, err := s.extractor.Extract(ctx, message)
		switch {
		case errors.Is(err, ai.ErrDisabled):
			// No AI configured; the flow stays on the pending question.
		case err != nil:
			// Skip extraction this turn; the pending question is
			// implicitly re-asked.
			log.CollaboratorError("groq", "extract_qualification", err)
		default:
			state.Apply(extracted)
		}
	}

	score := qualification.Score(state.Answers)
	tier := qualification.Classify(score, s.thresholds)
	offer := qualification.ShouldOfferAppointment(score, state.Progress, s.thresholds)
	if offer {
		state.MarkQualified()
	}

	if state.IsQualified && req.UserEmail != "" {
		s.captureLead(ctx, log, sessionID, &conv, state, req, score, tier)
	}

	reply, suggestions, requiresHuman := s.generateReply(ctx, log, message, intent, history, state, score, tier)

	if err := s.repo.AppendMessage(ctx, sessionID, "assistant", reply); err != nil {
		log.DatabaseError("append_assistant_message", err)
	}
	if err := s.repo.SaveState(ctx, sessionID, state); err != nil {
		log.DatabaseError("save_conversation_state", err)
	}

	log.ChatMessage(sessionID, intent, state.Progress, score)

	resp := &transport.ChatResponse{
		SessionID:             sessionID,
		Message:               reply,
		QualificationProgress: state.Progress,
		TotalQuestions:        qualification.TotalQuestions,
		IsQualified:           state.IsQualified,
		LeadScore:             score,
		Intent:                intent,
		Suggestions:           suggestions,
		RequiresHuman:         requiresHuman,
	}

	switch {
	case offer:
		action := transport.ActionOfferAppointment
		resp.NextAction = &action
		resp.BookingURL = s.booking.BookingURL()
	default:
		if next := qualification.NextQuestion(state.Progress, state.Answers); next != nil {
			action := transport.ActionContinueQualification
			resp.NextAction = &action
			resp.NextQuestion = next
		}
	}
	return resp, nil
}

// captureLead upserts the lead and links it to the conversation. Lead
// capture never fails the chat turn.
func (s *Service) captureLead(
	ctx context.Context,
	log *logger.Logger,
	sessionID string,
	conv *repository.Conversation,
	state qualification.State,
	req transport.ProcessMessageRequest,
	score int,
	tier qualification.Tier,
) {
	name := req.UserName
	if name == "" {
		name = fallbackLeadName
	}

	leadID, err := s.leads.UpsertQualified(ctx, QualifiedLead{
		Name:    name,
		Email:   req.UserEmail,
		Source:  conv.Channel,
		Answers: state.Answers,
		Score:   score,
		Tier:    string(tier),
	})
	if err != nil {
		log.CollaboratorError("leads", "upsert_qualified", err)
		return
	}

	if conv.LeadID == nil || *conv.LeadID != leadID {
		if err := s.repo.LinkLead(ctx, sessionID, leadID); err != nil {
			log.DatabaseError("link_lead", err)
		} else {
			conv.LeadID = &leadID
		}
	}

	log.LeadQualified(req.UserEmail, string(tier), score)
	s.bus.Publish(ctx, events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		SessionID: sessionID,
		Email:     req.UserEmail,
		Name:      name,
		LeadScore: score,
		Tier:      string(tier),
	})
}

// generateReply asks the AI generator for a response. When no AI is
// configured the canned intent template (or the tier recommendation,
// once qualified) answers instead; an actual collaborator failure falls
// back to the apology and flags the turn for a human.
func (s *Service) generateReply(
	ctx context.Context,
	log *logger.Logger,
	message, intent string,
	history []repository.Message,
	state qualification.State,
	score int,
	tier qualification.Tier,
) (string, []string, bool) {
	rc := ai.ReplyContext{
		Progress:          state.Progress,
		Answers:           state.Answers.Map(),
		LeadScore:         score,
		Tier:              string(tier),
		AppointmentBooked: state.AppointmentBooked,
	}
	if state.IsQualified && !state.AppointmentBooked {
		rc.Recommendation = qualification.RecommendationMessage(tier)
	}

	reply, err := s.generator.Generate(ctx, message, toAIMessages(history), rc)
	switch {
	case errors.Is(err, ai.ErrDisabled):
		if rc.Recommendation != "" {
			return rc.Recommendation, nil, false
		}
		tmpl := knowledge.TemplateFor(intent)
		return tmpl.Reply, tmpl.Suggestions, false
	case err != nil:
		log.CollaboratorError("groq", "generate_reply", err)
		return ai.FallbackReply, nil, true
	}
	return reply, nil, false
}

// BookAppointment books a consultation slot for a session. Booking API
// failures come back as an unsuccessful result, not an error.
func (s *Service) BookAppointment(ctx context.Context, req transport.BookAppointmentRequest) (*calendar.BookingResult, error) {
	conv, err := s.repo.GetConversation(ctx, req.SessionID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load conversation", err)
	}

	result := s.booking.CreateBooking(ctx, calendar.BookingRequest{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     phone.NormalizeE164(req.Phone),
		StartTime: req.StartTime,
		Notes:     req.Notes,
	})
	if !result.Success {
		s.log.WithSessionID(req.SessionID).CollaboratorError("calcom", "create_booking", apperr.Unavailable(result.Error))
		return result, nil
	}

	state := conv.State
	state.MarkBooked()
	if err := s.repo.SaveState(ctx, req.SessionID, state); err != nil {
		s.log.WithSessionID(req.SessionID).DatabaseError("save_conversation_state", err)
	}

	s.bus.Publish(ctx, events.AppointmentBooked{
		BaseEvent: events.NewBaseEvent(),
		SessionID: req.SessionID,
		LeadID:    conv.LeadID,
		BookingID: result.BookingID,
		Name:      req.Name,
		Email:     req.Email,
		StartTime: req.StartTime,
	})
	return result, nil
}

// Availability proxies the booking calendar's open slots.
func (s *Service) Availability(ctx context.Context) (*calendar.Availability, error) {
	availability, err := s.booking.GetAvailability(ctx, 0)
	if err != nil {
		s.log.CollaboratorError("calcom", "get_availability", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "availability is temporarily unavailable", err)
	}
	return availability, nil
}

// History returns the transcript and qualification status for a session.
func (s *Service) History(ctx context.Context, sessionID string) (*transport.HistoryResponse, error) {
	conv, err := s.repo.GetConversation(ctx, sessionID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load conversation", err)
	}

	messages, err := s.repo.ListMessages(ctx, sessionID, transcriptLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load messages", err)
	}

	dtos := make([]transport.MessageDTO, 0, len(messages))
	for _, msg := range messages {
		dtos = append(dtos, transport.MessageDTO{
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	return &transport.HistoryResponse{
		SessionID:             conv.SessionID,
		Channel:               conv.Channel,
		QualificationProgress: conv.State.Progress,
		TotalQuestions:        qualification.TotalQuestions,
		IsQualified:           conv.State.IsQualified,
		LeadScore:             qualification.Score(conv.State.Answers),
		AppointmentBooked:     conv.State.AppointmentBooked,
		Messages:              dtos,
		CreatedAt:             conv.CreatedAt,
		UpdatedAt:             conv.UpdatedAt,
	}, nil
}

func toAIMessages(history []repository.Message) []ai.Message {
	if len(history) == 0 {
		return nil
	}
	out := make([]ai.Message, 0, len(history))
	for _, msg := range history {
		out = append(out, ai.Message{Role: msg.Role, Content: msg.Content})
	}
	return out
}
