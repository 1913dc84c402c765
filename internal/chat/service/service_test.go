package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"provision_chat_backend/internal/calendar"
	"provision_chat_backend/internal/chat/ai"
	"provision_chat_backend/internal/chat/qualification"
	"provision_chat_backend/internal/chat/repository"
	"provision_chat_backend/internal/chat/transport"
	"provision_chat_backend/internal/events"
	"provision_chat_backend/platform/apperr"
	"provision_chat_backend/platform/logger"
)

// ---- fakes ----

type fakeRepo struct {
	convs    map[string]repository.Conversation
	messages map[string][]repository.Message
	linked   map[string]int64
	failLoad bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		convs:    make(map[string]repository.Conversation),
		messages: make(map[string][]repository.Message),
		linked:   make(map[string]int64),
	}
}

func (r *fakeRepo) GetConversation(_ context.Context, sessionID string) (repository.Conversation, error) {
	if r.failLoad {
		return repository.Conversation{}, apperr.Internal("boom")
	}
	conv, ok := r.convs[sessionID]
	if !ok {
		return repository.Conversation{}, apperr.NotFound("conversation not found")
	}
	return conv, nil
}

func (r *fakeRepo) CreateConversation(_ context.Context, sessionID, channel string) (repository.Conversation, error) {
	conv := repository.Conversation{
		SessionID: sessionID,
		Channel:   channel,
		State:     qualification.NewState(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.convs[sessionID] = conv
	return conv, nil
}

func (r *fakeRepo) SaveState(_ context.Context, sessionID string, state qualification.State) error {
	conv, ok := r.convs[sessionID]
	if !ok {
		return apperr.NotFound("conversation not found")
	}
	conv.State = state
	r.convs[sessionID] = conv
	return nil
}

func (r *fakeRepo) LinkLead(_ context.Context, sessionID string, leadID int64) error {
	conv, ok := r.convs[sessionID]
	if !ok {
		return apperr.NotFound("conversation not found")
	}
	conv.LeadID = &leadID
	r.convs[sessionID] = conv
	r.linked[sessionID] = leadID
	return nil
}

func (r *fakeRepo) AppendMessage(_ context.Context, sessionID, role, content string) error {
	r.messages[sessionID] = append(r.messages[sessionID], repository.Message{
		ID:        int64(len(r.messages[sessionID]) + 1),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	return nil
}

func (r *fakeRepo) ListMessages(_ context.Context, sessionID string, limit int) ([]repository.Message, error) {
	msgs := r.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

type fakeExtractor struct {
	answers qualification.Answers
	err     error
	calls   int
}

func (e *fakeExtractor) Extract(context.Context, string) (qualification.Answers, error) {
	e.calls++
	return e.answers, e.err
}

type fakeGenerator struct {
	reply string
	err   error
}

func (g *fakeGenerator) Generate(_ context.Context, _ string, _ []ai.Message, _ ai.ReplyContext) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type fakeBooking struct {
	result *calendar.BookingResult
}

func (b *fakeBooking) CreateBooking(context.Context, calendar.BookingRequest) *calendar.BookingResult {
	return b.result
}

func (b *fakeBooking) GetAvailability(context.Context, time.Duration) (*calendar.Availability, error) {
	return &calendar.Availability{}, nil
}

func (b *fakeBooking) BookingURL() string {
	return "https://cal.com/provision-brokerage"
}

type fakeLeads struct {
	leadID   int64
	err      error
	captured []QualifiedLead
}

func (l *fakeLeads) UpsertQualified(_ context.Context, lead QualifiedLead) (int64, error) {
	if l.err != nil {
		return 0, l.err
	}
	l.captured = append(l.captured, lead)
	return l.leadID, nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

type deps struct {
	repo      *fakeRepo
	extractor *fakeExtractor
	generator *fakeGenerator
	booking   *fakeBooking
	leads     *fakeLeads
	bus       *recordingBus
}

func newService(t *testing.T) (*Service, *deps) {
	t.Helper()
	d := &deps{
		repo:      newFakeRepo(),
		extractor: &fakeExtractor{},
		generator: &fakeGenerator{reply: "Happy to help with your retirement planning."},
		booking:   &fakeBooking{result: &calendar.BookingResult{Success: true, BookingID: "42"}},
		leads:     &fakeLeads{leadID: 7},
		bus:       &recordingBus{},
	}
	svc := New(d.repo, d.extractor, d.generator, d.booking, d.leads, d.bus,
		qualification.DefaultThresholds, logger.New("development"))
	return svc, d
}

func seedConversation(d *deps, sessionID string, state qualification.State) {
	d.repo.convs[sessionID] = repository.Conversation{
		SessionID: sessionID,
		Channel:   "web",
		State:     state,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

const testSession = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

// ---- ProcessMessage ----

func TestProcessMessage_NewSessionAsksFirstQuestion(t *testing.T) {
	svc, d := newService(t)

	resp, err := svc.ProcessMessage(context.Background(), transport.ProcessMessageRequest{
		Message: "Hi, I'm interested in retirement planning",
	})
	if err != nil {
		t.Fatalf("ProcessMessage returned error: %v", err)
	}

	if resp.SessionID == "" {
		t.Fatal("expected a generated session ID")
	}
	if resp.QualificationProgress != 0 || resp.TotalQuestions != 7 {
		t.Fatalf("expected progress 0/7, got %d/%d", resp.QualificationProgress, resp.TotalQuestions)
	}
	if resp.NextAction == nil || *resp.NextAction != transport.ActionContinueQualification {
		t.Fatalf("expected continue_qualification, got %v", resp.NextAction)
	}
	if resp.NextQuestion == nil || resp.NextQuestion.Field != qualification.FieldAgeRange {
		t.Fatalf("expected first question to ask age range, got %+v", resp.NextQuestion)
	}
	if resp.IsQualified || resp.LeadScore != 0 {
		t.Fatalf("fresh session must not be qualified, got qualified=%v score=%d", resp.IsQualified, resp.LeadScore)
	}

	// Both turns must be persisted.
	msgs := d.repo.messages[resp.SessionID]
	if len(msgs) != 2 || msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Fatalf("expected stored user+assistant turns, got %+v", msgs)
	}
}

func TestProcessMessage_ExtractionAdvancesCursor(t *testing.T) {
	svc, d := newService(t)
	seedConversation(d, testSession, qualification.NewState())
	d.extractor.answers = qualification.Answers{AgeRange: "51-65"}

	resp, err := svc.ProcessMessage(context.Background(), transport.ProcessMessageRequest{
		Message:   "I'm 58 years old",
		SessionID: testSession,
	})
	if err != nil {
		t.Fatalf("ProcessMessage returned error: %v", err)
	}

	if resp.QualificationProgress != 1 {
		t.Fatalf("expected progress 1, got %d", resp.QualificationProgress)
	}
	if resp.LeadScore != 28 {
		t.Fatalf("expected score 28, got %d", resp.LeadScore)
	}
	if resp.NextQuestion == nil || resp.NextQuestion.Field != qualification.FieldRetirementTimeline {
		t.Fatalf("expected timeline question next, got %+v", resp.NextQuestion)
	}
	if got := d.repo.convs[testSession].State.Answers.AgeRange; got != "51-65" {
		t.Fatalf("expected persisted answer, got %q", got)
	}
}

func TestProcessMessage_ExtractorFailureReasksQuestion(t *testing.T) {
	svc, d := newService(t)
	seedConversation(d, testSession, qualification.State{
		Progress: 1,
		Answers:  qualification.Answers{AgeRange: "51-65"},
	})
	d.extractor.err = apperr.Unavailable("groq timeout")

	resp, err := svc.ProcessMessage(context.Background(), transport.ProcessMessageRequest{
		Message:   "about five years from now",
		SessionID: testSession,
	})
	if err != nil {
		t.Fatalf("extractor failure must not fail the turn: %v", err)
	}

	if resp.QualificationProgress != 1 {
		t.Fatalf("expected cursor held at 1, got %d", resp.QualificationProgress)
	}
	if resp.NextQuestion == nil || resp.NextQuestion.Field != qualification.FieldRetirementTimeline {
		t.Fatalf("expected same question re-asked, got %+v", resp.NextQuestion)
	}
	if resp.RequiresHuman {
		t.Fatal("extraction failure alone must not flag requires_human")
	}
}

func TestProcessMessage_GeneratorFailureFallsBack(t *testing.T) {
	svc, d := newService(t)
	seedConversation(d, testSession, qualification.NewState())
	d.generator.err = apperr.Unavailable("groq down")

	resp, err := svc.ProcessMessage(context.Background(), transport.ProcessMessageRequest{
		Message:   "Tell me about annuities",
		SessionID: testSession,
	})
	if err != nil {
		t.Fatalf("generator failure must not fail the turn: %v", err)
	}

	if resp.Message != ai.FallbackReply {
		t.Fatalf("expected fallback reply, got %q", resp.Message)
	}
	if !resp.RequiresHuman {
		t.Fatal("expected requires_human on fallback")
	}
	if !strings.Contains(resp.Message, "1-800") {
		t.Fatalf("fallback must include the phone number: %q", resp.Message)
	}
	// The fallback is still a stored assistant turn.
	msgs := d.repo.messages[testSession]
	if len(msgs) != 2 || msgs[1].Content != ai.FallbackReply {
		t.Fatalf("expected fallback persisted, got %+v", msgs)
	}
}

func TestProcessMessage_DisabledGeneratorUsesTemplates(t *testing.T) {
	svc, d := newService(t)
	seedConversation(d, testSession, qualification.NewState())
	d.generator.err = ai.ErrDisabled

	resp, err := svc.ProcessMessage(context.Background(), transport.ProcessMessageRequest{
		Message:   "What are annuities?",
		SessionID: testSession,
	})
	if err != nil {
		t.Fatalf("ProcessMessage returned error: %v", err)
	}

	if resp.Intent != "annuities_general" {
		t.Fatalf("expected annuities_general intent, got %q", resp.Intent)
	}
	if !strings.Contains(resp.Message, "guaranteed income") {
		t.Fatalf("expected canned annuity reply, got %q", resp.Message)
	}
	if len(resp.Suggestions) == 0 {
		t.Fatalf("expected template suggestions, got %+v", resp.Suggestions)
	}
	if resp.RequiresHuman {
		t.Fatal("disabled AI is not a collaborator failure")
	}
}

func TestProcessMessage_DisabledGeneratorQualifiedUsesRecommendation(t *testing.T) {
	svc, d := newService(t)
	seedConversation(d, testSession, qualification.State{
		Progress: 4,
		Answers: qualification.Answers{
			AgeRange:           "51-65",
			RetirementTimeline: "Already retired",
			State:              "Florida",
			InvestableAssets:   "Over $1M",
		},
		IsQualified: true,
	})
	d.generator.err = ai.ErrDisabled

	resp, err := svc.ProcessMessage(context.Background(), transport.ProcessMessageRequest{
		Message:   "what do you suggest?",
		SessionID: testSession,
	})
	if err != nil {
		t.Fatalf("ProcessMessage returned error: %v", err)
	}

	want := qualification.RecommendationMessage(qualification.TierHighValue)
	if resp.Message != want {
		t.Fatalf("expected tier recommendation, got %q", resp.Message)
	}
	if resp.RequiresHuman {
		t.Fatal("disabled AI is not a collaborator failure")
	}
}

func TestProcessMessage_FastTrackOffersAppointment(t *testing.T) {
	svc, d := newService(t)
	// Three strong answers in; the fourth clears both gates: progress 4
	// and score 28+30+40 = 98, over the Qualified threshold.
	seedConversation(d, testSession, qualification.State{
		Progress: 3,
		Answers: qualification.Answers{
			AgeRange:           "51-65",
			RetirementTimeline: "Already retired",
			State:              "Florida",
		},
	})
	d.extractor.answers = qualification.Answers{InvestableAssets: "Over $1M"}

	resp, err := svc.ProcessMessage(context.Background(), transport.ProcessMessageRequest{
		Message:   "well over a million invested",
		SessionID: testSession,
	})
	if err != nil {
		t.Fatalf("ProcessMessage returned error: %v", err)
	}

	if resp.QualificationProgress != 4 {
		t.Fatalf("expected progress 4, got %d", resp.QualificationProgress)
	}
	if resp.LeadScore != 98 {
		t.Fatalf("expected score 98, got %d", resp.LeadScore)
	}
	if !resp.IsQualified {
		t.Fatal("expected fast-tracked lead to be qualified")
	}
	if resp.NextAction == nil || *resp.NextAction != transport.ActionOfferAppointment {
		t.Fatalf("expected offer_appointment, got %v", resp.NextAction)
	}
	if resp.BookingURL == "" {
		t.Fatal("offer_appointment must carry a booking URL")
	}
	if resp.NextQuestion != nil {
		t.Fatalf("offer must not carry a next question, got %+v", resp.NextQuestion)
	}
}

func TestProcessMessage_BelowFastTrackKeepsAsking(t *testing.T) {
	svc, d := newService(t)
	// Progress reaches 4 but the partial score stays under 60.
	seedConversation(d, testSession, qualification.State{
		Progress: 3,
		Answers: qualification.Answers{
			AgeRange:           "20-30",
			RetirementTimeline: "15+ years",
			State:              "Ohio",
		},
	})
	d.extractor.answers = qualification.Answers{InvestableAssets: "Less than $100k"}

	resp, err := svc.ProcessMessage(context.Background(), transport.ProcessMessageRequest{
		Message:   "less than 100k saved",
		SessionID: testSession,
	})
	if err != nil {
		t.Fatalf("ProcessMessage returned error: %v", err)
	}

	if resp.LeadScore != 50 {
		t.Fatalf("expected score 50, got %d", resp.LeadScore)
	}
	if resp.IsQualified {
		t.Fatal("score below threshold must not qualify at progress 4")
	}
	if resp.NextAction == nil || *resp.NextAction != transport.ActionContinueQualification {
		t.Fatalf("expected continue_qualification, got %v", resp.NextAction)
	}
	if resp.NextQuestion == nil || resp.NextQuestion.Field != qualification.FieldCurrentAnnuity {
		t.Fatalf("expected annuity question next, got %+v", resp.NextQuestion)
	}
}

func TestProcessMessage_CompletedFlowUpsertsLead(t *testing.T) {
	svc, d := newService(t)
	seedConversation(d, testSession, qualification.State{
		Progress: 6,
		Answers: qualification.Answers{
			AgeRange:           "65+",
			RetirementTimeline: "Already retired",
			State:              "Texas",
			InvestableAssets:   "$500k-$1M",
			CurrentAnnuity:     "No",
			Concerns:           "Guaranteed income",
		},
	})
	d.extractor.answers = qualification.Answers{Goals: "Travel"}

	resp, err := svc.ProcessMessage(context.Background(), transport.ProcessMessageRequest{
		Message:   "mostly we want to travel",
		SessionID: testSession,
		UserEmail: "pat@example.com",
		UserName:  "Pat Doe",
	})
	if err != nil {
		t.Fatalf("ProcessMessage returned error: %v", err)
	}

	if resp.QualificationProgress != 7 || !resp.IsQualified {
		t.Fatalf("expected completed qualified flow, got progress=%d qualified=%v",
			resp.QualificationProgress, resp.IsQualified)
	}
	if resp.LeadScore != 100 {
		t.Fatalf("expected clamped score 100, got %d", resp.LeadScore)
	}
	if resp.NextAction == nil || *resp.NextAction != transport.ActionOfferAppointment {
		t.Fatalf("expected offer_appointment, got %v", resp.NextAction)
	}

	if len(d.leads.captured) != 1 {
		t.Fatalf("expected one lead upsert, got %d", len(d.leads.captured))
	}
	lead := d.leads.captured[0]
	if lead.Email != "pat@example.com" || lead.Name != "Pat Doe" || lead.Score != 100 {
		t.Fatalf("unexpected lead capture: %+v", lead)
	}
	if lead.Tier != string(qualification.TierHighValue) {
		t.Fatalf("expected High Value tier, got %q", lead.Tier)
	}
	if d.repo.linked[testSession] != 7 {
		t.Fatalf("expected conversation linked to lead 7, got %d", d.repo.linked[testSession])
	}

	var sawQualified bool
	for _, event := range d.bus.published {
		if qualified, ok := event.(events.LeadQualified); ok {
			sawQualified = true
			if qualified.LeadID != 7 || qualified.SessionID != testSession {
				t.Fatalf("unexpected LeadQualified payload: %+v", qualified)
			}
		}
	}
	if !sawQualified {
		t.Fatal("expected LeadQualified event")
	}
}

func TestProcessMessage_NoEmailSkipsLeadCapture(t *testing.T) {
	svc, d := newService(t)
	seedConversation(d, testSession, qualification.State{
		Progress: 6,
		Answers: qualification.Answers{
			AgeRange:           "65+",
			RetirementTimeline: "Already retired",
			State:              "Texas",
			InvestableAssets:   "$500k-$1M",
			CurrentAnnuity:     "No",
			Concerns:           "Guaranteed income",
		},
	})
	d.extractor.answers = qualification.Answers{Goals: "Travel"}

	resp, err := svc.ProcessMessage(context.Background(), transport.ProcessMessageRequest{
		Message:   "travel mostly",
		SessionID: testSession,
	})
	if err != nil {
		t.Fatalf("ProcessMessage returned error: %v", err)
	}
	if !resp.IsQualified {
		t.Fatal("expected qualified response")
	}
	if len(d.leads.captured) != 0 {
		t.Fatalf("lead must not be captured without an email, got %+v", d.leads.captured)
	}
}

func TestProcessMessage_LeadStoreFailureDegradesGracefully(t *testing.T) {
	svc, d := newService(t)
	seedConversation(d, testSession, qualification.State{
		Progress: 4,
		Answers: qualification.Answers{
			AgeRange:           "51-65",
			RetirementTimeline: "Already retired",
			State:              "Florida",
			InvestableAssets:   "Over $1M",
		},
		IsQualified: true,
	})
	d.leads.err = apperr.Internal("db down")

	resp, err := svc.ProcessMessage(context.Background(), transport.ProcessMessageRequest{
		Message:   "sounds good",
		SessionID: testSession,
		UserEmail: "pat@example.com",
	})
	if err != nil {
		t.Fatalf("lead store failure must not fail the turn: %v", err)
	}
	if !resp.IsQualified {
		t.Fatal("expected qualified response despite lead store failure")
	}
	if len(d.bus.published) != 0 {
		t.Fatalf("no event should be published when the upsert failed, got %+v", d.bus.published)
	}
}

func TestProcessMessage_CompletedFlowSkipsExtraction(t *testing.T) {
	svc, d := newService(t)
	seedConversation(d, testSession, qualification.State{
		Progress: 7,
		Answers: qualification.Answers{
			AgeRange:           "65+",
			RetirementTimeline: "Already retired",
			State:              "Texas",
			InvestableAssets:   "$500k-$1M",
			CurrentAnnuity:     "No",
			Concerns:           "Guaranteed income",
			Goals:              "Travel",
		},
		IsQualified: true,
	})

	if _, err := svc.ProcessMessage(context.Background(), transport.ProcessMessageRequest{
		Message:   "thanks!",
		SessionID: testSession,
	}); err != nil {
		t.Fatalf("ProcessMessage returned error: %v", err)
	}
	if d.extractor.calls != 0 {
		t.Fatalf("extraction must be skipped after completion, got %d calls", d.extractor.calls)
	}
}

func TestProcessMessage_EmptyMessageRejected(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.ProcessMessage(context.Background(), transport.ProcessMessageRequest{Message: "   "})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// ---- BookAppointment ----

func TestBookAppointment_Success(t *testing.T) {
	svc, d := newService(t)
	leadID := int64(7)
	seedConversation(d, testSession, qualification.State{Progress: 7, IsQualified: true})
	conv := d.repo.convs[testSession]
	conv.LeadID = &leadID
	d.repo.convs[testSession] = conv

	result, err := svc.BookAppointment(context.Background(), transport.BookAppointmentRequest{
		SessionID: testSession,
		Name:      "Pat Doe",
		Email:     "pat@example.com",
		Phone:     "(212) 555-0147",
		StartTime: time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("BookAppointment returned error: %v", err)
	}
	if !result.Success || result.BookingID != "42" {
		t.Fatalf("unexpected booking result: %+v", result)
	}

	if !d.repo.convs[testSession].State.AppointmentBooked {
		t.Fatal("expected appointment_booked latched on the conversation")
	}

	var sawBooked bool
	for _, event := range d.bus.published {
		if booked, ok := event.(events.AppointmentBooked); ok {
			sawBooked = true
			if booked.BookingID != "42" || booked.LeadID == nil || *booked.LeadID != leadID {
				t.Fatalf("unexpected AppointmentBooked payload: %+v", booked)
			}
		}
	}
	if !sawBooked {
		t.Fatal("expected AppointmentBooked event")
	}
}

func TestBookAppointment_UnknownSession(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.BookAppointment(context.Background(), transport.BookAppointmentRequest{
		SessionID: testSession,
		Name:      "Pat Doe",
		Email:     "pat@example.com",
		Phone:     "2125550147",
		StartTime: time.Now(),
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBookAppointment_FailureResultDoesNotLatch(t *testing.T) {
	svc, d := newService(t)
	seedConversation(d, testSession, qualification.State{Progress: 7, IsQualified: true})
	d.booking.result = &calendar.BookingResult{Success: false, Error: "booking failed: 500"}

	result, err := svc.BookAppointment(context.Background(), transport.BookAppointmentRequest{
		SessionID: testSession,
		Name:      "Pat Doe",
		Email:     "pat@example.com",
		Phone:     "2125550147",
		StartTime: time.Now(),
	})
	if err != nil {
		t.Fatalf("booking API failure must not be an error: %v", err)
	}
	if result.Success {
		t.Fatal("expected unsuccessful result")
	}
	if d.repo.convs[testSession].State.AppointmentBooked {
		t.Fatal("failed booking must not latch appointment_booked")
	}
	if len(d.bus.published) != 0 {
		t.Fatalf("no event should be published on failure, got %+v", d.bus.published)
	}
}

// ---- History ----

func TestHistory_ReturnsTranscript(t *testing.T) {
	svc, d := newService(t)
	seedConversation(d, testSession, qualification.State{Progress: 2, Answers: qualification.Answers{
		AgeRange:           "51-65",
		RetirementTimeline: "1-5 years",
	}})
	_ = d.repo.AppendMessage(context.Background(), testSession, "user", "hello")
	_ = d.repo.AppendMessage(context.Background(), testSession, "assistant", "hi there")

	history, err := svc.History(context.Background(), testSession)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if history.QualificationProgress != 2 || history.TotalQuestions != 7 {
		t.Fatalf("unexpected progress: %+v", history)
	}
	if history.LeadScore != 56 {
		t.Fatalf("expected score 56, got %d", history.LeadScore)
	}
	if len(history.Messages) != 2 || history.Messages[0].Role != "user" {
		t.Fatalf("unexpected transcript: %+v", history.Messages)
	}
}

func TestHistory_UnknownSession(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.History(context.Background(), testSession)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
