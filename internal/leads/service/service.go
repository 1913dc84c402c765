// Package service implements lead management: upsert-by-email capture,
// admin listing, and tier statistics.
package service

import (
	"context"
	"math"

	"provision_chat_backend/internal/chat/qualification"
	"provision_chat_backend/internal/events"
	"provision_chat_backend/internal/leads/repository"
	"provision_chat_backend/internal/leads/transport"
	"provision_chat_backend/platform/apperr"
	"provision_chat_backend/platform/logger"
)

// UpsertQualifiedParams carries one qualification outcome into the store.
type UpsertQualifiedParams struct {
	Name    string
	Email   string
	Phone   string
	Source  string
	Answers qualification.Answers
	Score   int
	Tier    string
}

// Service is the leads domain service.
type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new leads service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// UpsertQualified creates or updates the lead row for the email and
// publishes LeadCreated for first-time captures.
func (s *Service) UpsertQualified(ctx context.Context, params UpsertQualifiedParams) (repository.Lead, error) {
	if params.Email == "" {
		return repository.Lead{}, apperr.Validation("email is required")
	}

	lead, created, err := s.repo.UpsertByEmail(ctx, repository.UpsertParams{
		Name:                params.Name,
		Email:               params.Email,
		Phone:               params.Phone,
		State:               params.Answers.State,
		AgeRange:            params.Answers.AgeRange,
		RetirementTimeline:  params.Answers.RetirementTimeline,
		InvestableAssets:    params.Answers.InvestableAssets,
		CurrentAnnuity:      params.Answers.CurrentAnnuity,
		Concerns:            params.Answers.Concerns,
		Goals:               params.Answers.Goals,
		LeadScore:           params.Score,
		QualificationStatus: params.Tier,
		Source:              params.Source,
	})
	if err != nil {
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to store lead", err)
	}

	if created {
		s.bus.Publish(ctx, events.LeadCreated{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			Email:     lead.Email,
			Name:      lead.Name,
			Source:    lead.Source,
		})
	}
	return lead, nil
}

// Get returns one lead by ID.
func (s *Service) Get(ctx context.Context, id int64) (repository.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

var validStatuses = map[string]bool{
	string(qualification.TierHighValue): true,
	string(qualification.TierQualified): true,
	string(qualification.TierWarm):      true,
	string(qualification.TierCold):      true,
}

// List returns leads matching the filter, best score first.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (*transport.ListLeadsResponse, error) {
	if req.Status != "" && !validStatuses[req.Status] {
		return nil, apperr.Validation("unknown qualification status")
	}

	leads, err := s.repo.List(ctx, repository.ListFilter{
		Query:    req.Query,
		Status:   req.Status,
		Source:   req.Source,
		MinScore: req.MinScore,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list leads", err)
	}
	return &transport.ListLeadsResponse{Leads: leads, Count: len(leads)}, nil
}

// Stats returns per-tier counts and the conversion rate: the share of
// leads that scored at least Qualified, rounded to one decimal.
func (s *Service) Stats(ctx context.Context) (*transport.StatsResponse, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to compute lead stats", err)
	}

	var rate float64
	if stats.Total > 0 {
		rate = math.Round(float64(stats.HighValue+stats.Qualified)/float64(stats.Total)*1000) / 10
	}
	return &transport.StatsResponse{Stats: stats, ConversionRate: rate}, nil
}
