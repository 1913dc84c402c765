// Package repository persists lead records.
package repository

import (
	"context"
	"time"
)

// Lead is a prospect captured by the chat surface or a landing page.
// Email is the natural key; repeat captures update the same row.
type Lead struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone,omitempty"`
	State               string     `json:"state,omitempty"`
	AgeRange            string     `json:"age_range,omitempty"`
	RetirementTimeline  string     `json:"retirement_timeline,omitempty"`
	InvestableAssets    string     `json:"investable_assets,omitempty"`
	CurrentAnnuity      string     `json:"current_annuity,omitempty"`
	Concerns            string     `json:"concerns,omitempty"`
	Goals               string     `json:"goals,omitempty"`
	LeadScore           int        `json:"lead_score"`
	QualificationStatus string     `json:"qualification_status"`
	Source              string     `json:"source,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

// UpsertParams carries the fields written on create-or-update. Empty
// strings never overwrite existing values.
type UpsertParams struct {
	Name                string
	Email               string
	Phone               string
	State               string
	AgeRange            string
	RetirementTimeline  string
	InvestableAssets    string
	CurrentAnnuity      string
	Concerns            string
	Goals               string
	LeadScore           int
	QualificationStatus string
	Source              string
}

// ListFilter narrows the admin lead listing.
type ListFilter struct {
	Query    string
	Status   string
	Source   string
	MinScore *int
	Limit    int
	Offset   int
}

// Stats aggregates lead counts per tier.
type Stats struct {
	Total     int64 `json:"total"`
	HighValue int64 `json:"high_value"`
	Qualified int64 `json:"qualified"`
	Warm      int64 `json:"warm"`
	Cold      int64 `json:"cold"`
}

// Repository defines persistence operations for leads.
type Repository interface {
	// UpsertByEmail creates the lead or merges into the existing row for
	// the same email. Returns the stored lead and whether it was created.
	UpsertByEmail(ctx context.Context, params UpsertParams) (Lead, bool, error)
	// GetByID returns a lead, or apperr.NotFound.
	GetByID(ctx context.Context, id int64) (Lead, error)
	// GetByEmail returns a lead, or apperr.NotFound.
	GetByEmail(ctx context.Context, email string) (Lead, error)
	// List returns leads matching the filter, highest score first.
	List(ctx context.Context, filter ListFilter) ([]Lead, error)
	// Stats returns per-tier lead counts.
	Stats(ctx context.Context) (Stats, error)
}
