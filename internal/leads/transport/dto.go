// Package transport defines the request/response DTOs for the leads API.
package transport

import (
	"provision_chat_backend/internal/leads/repository"
)

// ListLeadsRequest filters the admin lead listing.
type ListLeadsRequest struct {
	Query    string `form:"q" validate:"omitempty,max=200"`
	Status   string `form:"status" validate:"omitempty,max=20"`
	Source   string `form:"source" validate:"omitempty,max=50"`
	MinScore *int   `form:"min_score" validate:"omitempty,min=0,max=100"`
	Limit    int    `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset   int    `form:"offset" validate:"omitempty,min=0"`
}

// ListLeadsResponse is the lead listing payload.
type ListLeadsResponse struct {
	Leads []repository.Lead `json:"leads"`
	Count int               `json:"count"`
}

// StatsResponse aggregates lead counts plus the share of leads that
// reached at least the Qualified tier, as a percentage.
type StatsResponse struct {
	repository.Stats
	ConversionRate float64 `json:"conversion_rate"`
}
