// Package service implements seminar management: scheduling, RSVPs with
// capacity control, attendance tracking, and outcome statistics.
package service

import (
	"context"
	"math"
	"strings"

	"provision_chat_backend/internal/events"
	"provision_chat_backend/internal/seminars/repository"
	"provision_chat_backend/internal/seminars/transport"
	"provision_chat_backend/platform/apperr"
	"provision_chat_backend/platform/logger"
	"provision_chat_backend/platform/phone"
	"provision_chat_backend/platform/sanitize"
)

const (
	defaultDurationMinutes = 60
	defaultCapacity        = 50
	defaultLocationType    = "virtual"
	defaultReminderPref    = "email"
)

// Service is the seminars domain service.
type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new seminars service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Create schedules a new seminar.
func (s *Service) Create(ctx context.Context, req transport.CreateSeminarRequest) (transport.SeminarDTO, error) {
	params := repository.CreateSeminarParams{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Topic:           req.Topic,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		LocationType:    req.LocationType,
		LocationDetails: req.LocationDetails,
		Capacity:        req.Capacity,
	}
	if params.DurationMinutes <= 0 {
		params.DurationMinutes = defaultDurationMinutes
	}
	if params.Capacity <= 0 {
		params.Capacity = defaultCapacity
	}
	if params.LocationType == "" {
		params.LocationType = defaultLocationType
	}

	seminar, err := s.repo.CreateSeminar(ctx, params)
	if err != nil {
		return transport.SeminarDTO{}, apperr.Wrap(apperr.KindInternal, "failed to create seminar", err)
	}
	return transport.NewSeminarDTO(seminar), nil
}

// Get returns one seminar.
func (s *Service) Get(ctx context.Context, id int64) (transport.SeminarDTO, error) {
	seminar, err := s.repo.GetSeminar(ctx, id)
	if err != nil {
		return transport.SeminarDTO{}, err
	}
	return transport.NewSeminarDTO(seminar), nil
}

// ListUpcoming returns future scheduled seminars, soonest first.
func (s *Service) ListUpcoming(ctx context.Context, req transport.ListSeminarsRequest) (*transport.ListSeminarsResponse, error) {
	seminars, err := s.repo.ListUpcoming(ctx, req.Topic, req.Limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list seminars", err)
	}

	dtos := make([]transport.SeminarDTO, 0, len(seminars))
	for _, seminar := range seminars {
		dtos = append(dtos, transport.NewSeminarDTO(seminar))
	}
	return &transport.ListSeminarsResponse{Seminars: dtos, Count: len(dtos)}, nil
}

// Register records an RSVP and publishes SeminarRegistered. An RSVP must
// identify either an existing lead or a guest by name and email.
func (s *Service) Register(ctx context.Context, seminarID int64, req transport.RegisterRequest) (repository.Registration, error) {
	if req.LeadID == nil && (req.GuestName == "" || req.GuestEmail == "") {
		return repository.Registration{}, apperr.Validation("must provide either lead_id or guest name and email")
	}

	pref := req.ReminderPreference
	if pref == "" {
		pref = defaultReminderPref
	}

	registration, err := s.repo.Register(ctx, repository.RegisterParams{
		SeminarID:          seminarID,
		LeadID:             req.LeadID,
		GuestName:          sanitize.Text(req.GuestName),
		GuestEmail:         strings.ToLower(req.GuestEmail),
		GuestPhone:         phone.NormalizeE164(req.GuestPhone),
		ReminderPreference: pref,
	})
	if err != nil {
		return repository.Registration{}, err
	}

	seminar, err := s.repo.GetSeminar(ctx, seminarID)
	if err != nil {
		// Registration is already committed; the event just loses the
		// seminar metadata.
		s.log.DatabaseError("get_seminar_for_event", err)
		return registration, nil
	}

	s.bus.Publish(ctx, events.SeminarRegistered{
		BaseEvent:       events.NewBaseEvent(),
		SeminarID:       seminarID,
		RegistrationID:  registration.ID,
		SeminarTitle:    seminar.Title,
		SeminarDate:     seminar.Date,
		LocationType:    seminar.LocationType,
		LocationDetails: seminar.LocationDetails,
		AttendeeName:    registration.GuestName,
		AttendeeEmail:   registration.GuestEmail,
		ReminderPref:    registration.ReminderPreference,
	})
	return registration, nil
}

// CheckIn marks an attendee as present.
func (s *Service) CheckIn(ctx context.Context, registrationID int64) (repository.Registration, error) {
	return s.repo.SetAttendance(ctx, registrationID, repository.AttendanceAttended)
}

// MarkNoShow marks an attendee as absent.
func (s *Service) MarkNoShow(ctx context.Context, registrationID int64) (repository.Registration, error) {
	return s.repo.SetAttendance(ctx, registrationID, repository.AttendanceNoShow)
}

// AddFeedback records post-seminar feedback. Rating must be 1-5.
func (s *Service) AddFeedback(ctx context.Context, registrationID int64, req transport.FeedbackRequest) (repository.Registration, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return repository.Registration{}, apperr.Validation("rating must be between 1 and 5")
	}
	return s.repo.AddFeedback(ctx, registrationID, sanitize.Text(req.Feedback), req.Rating, req.FollowUpInterest)
}

// Registrations returns all RSVPs for a seminar.
func (s *Service) Registrations(ctx context.Context, seminarID int64) ([]repository.Registration, error) {
	if _, err := s.repo.GetSeminar(ctx, seminarID); err != nil {
		return nil, err
	}
	return s.repo.ListRegistrations(ctx, seminarID)
}

// FollowUps returns attendees who asked for a follow-up call.
func (s *Service) FollowUps(ctx context.Context, seminarID int64) ([]repository.Registration, error) {
	return s.repo.FollowUps(ctx, seminarID)
}

// Stats summarizes one seminar's attendance and feedback.
func (s *Service) Stats(ctx context.Context, seminarID int64) (*transport.StatsResponse, error) {
	seminar, err := s.repo.GetSeminar(ctx, seminarID)
	if err != nil {
		return nil, err
	}
	registrations, err := s.repo.ListRegistrations(ctx, seminarID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list registrations", err)
	}

	var attended, noShows, followUps, ratingSum, ratingCount int
	for _, reg := range registrations {
		switch reg.AttendanceStatus {
		case repository.AttendanceAttended:
			attended++
		case repository.AttendanceNoShow:
			noShows++
		}
		if reg.FollowUpInterest {
			followUps++
		}
		if reg.Rating != nil {
			ratingSum += *reg.Rating
			ratingCount++
		}
	}

	stats := &transport.StatsResponse{
		SeminarID:     seminar.ID,
		Title:         seminar.Title,
		Registered:    seminar.RegisteredCount,
		Capacity:      seminar.Capacity,
		Attended:      attended,
		NoShows:       noShows,
		FollowUpLeads: followUps,
		IsFull:        seminar.IsFull(),
	}
	if seminar.RegisteredCount > 0 {
		stats.AttendanceRate = math.Round(float64(attended)/float64(seminar.RegisteredCount)*1000) / 10
	}
	if ratingCount > 0 {
		stats.AverageRating = math.Round(float64(ratingSum)/float64(ratingCount)*10) / 10
	}
	return stats, nil
}
