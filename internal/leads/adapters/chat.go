// Package adapters bridges the leads service to ports defined by other
// modules.
package adapters

import (
	"context"

	chatservice "provision_chat_backend/internal/chat/service"
	"provision_chat_backend/internal/leads/service"
)

// ChatLeadStore adapts the leads service to the chat orchestrator's
// LeadStore port.
type ChatLeadStore struct {
	svc *service.Service
}

// NewChatLeadStore creates the adapter.
func NewChatLeadStore(svc *service.Service) *ChatLeadStore {
	return &ChatLeadStore{svc: svc}
}

// Compile-time check against the chat port.
var _ chatservice.LeadStore = (*ChatLeadStore)(nil)

// UpsertQualified stores a qualified lead and returns its ID.
func (a *ChatLeadStore) UpsertQualified(ctx context.Context, lead chatservice.QualifiedLead) (int64, error) {
	stored, err := a.svc.UpsertQualified(ctx, service.UpsertQualifiedParams{
		Name:    lead.Name,
		Email:   lead.Email,
		Source:  lead.Source,
		Answers: lead.Answers,
		Score:   lead.Score,
		Tier:    lead.Tier,
	})
	if err != nil {
		return 0, err
	}
	return stored.ID, nil
}
