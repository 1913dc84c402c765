package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"provision_chat_backend/platform/apperr"
)

const leadNotFoundMessage = "lead not found"

const leadColumns = `id, name, email, phone, state, age_range, retirement_timeline,
	investable_assets, current_annuity, concerns, goals, lead_score,
	qualification_status, source, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new lead repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// UpsertByEmail creates a lead or merges non-empty fields into the row
// already stored for the email. The score only moves upward so a weaker
// re-qualification never downgrades a lead.
func (r *Repo) UpsertByEmail(ctx context.Context, params UpsertParams) (Lead, bool, error) {
	query := `
		INSERT INTO leads (name, email, phone, state, age_range, retirement_timeline,
		                   investable_assets, current_annuity, concerns, goals,
		                   lead_score, qualification_status, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (email) DO UPDATE SET
			name                 = COALESCE(NULLIF(EXCLUDED.name, ''), leads.name),
			phone                = COALESCE(NULLIF(EXCLUDED.phone, ''), leads.phone),
			state                = COALESCE(NULLIF(EXCLUDED.state, ''), leads.state),
			age_range            = COALESCE(NULLIF(EXCLUDED.age_range, ''), leads.age_range),
			retirement_timeline  = COALESCE(NULLIF(EXCLUDED.retirement_timeline, ''), leads.retirement_timeline),
			investable_assets    = COALESCE(NULLIF(EXCLUDED.investable_assets, ''), leads.investable_assets),
			current_annuity      = COALESCE(NULLIF(EXCLUDED.current_annuity, ''), leads.current_annuity),
			concerns             = COALESCE(NULLIF(EXCLUDED.concerns, ''), leads.concerns),
			goals                = COALESCE(NULLIF(EXCLUDED.goals, ''), leads.goals),
			lead_score           = GREATEST(EXCLUDED.lead_score, leads.lead_score),
			qualification_status = CASE WHEN EXCLUDED.lead_score >= leads.lead_score
			                            THEN EXCLUDED.qualification_status
			                            ELSE leads.qualification_status END,
			updated_at           = NOW()
		RETURNING ` + leadColumns + `, (xmax = 0) AS inserted`

	var lead Lead
	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		params.Name, strings.ToLower(params.Email), params.Phone, params.State,
		params.AgeRange, params.RetirementTimeline, params.InvestableAssets,
		params.CurrentAnnuity, params.Concerns, params.Goals,
		params.LeadScore, params.QualificationStatus, params.Source,
	).Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.State,
		&lead.AgeRange, &lead.RetirementTimeline, &lead.InvestableAssets,
		&lead.CurrentAnnuity, &lead.Concerns, &lead.Goals,
		&lead.LeadScore, &lead.QualificationStatus, &lead.Source,
		&lead.CreatedAt, &lead.UpdatedAt, &inserted,
	)
	if err != nil {
		return Lead{}, false, fmt.Errorf("upsert lead: %w", err)
	}
	return lead, inserted, nil
}

// GetByID retrieves a lead by its ID.
func (r *Repo) GetByID(ctx context.Context, id int64) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetByEmail retrieves a lead by email.
func (r *Repo) GetByEmail(ctx context.Context, email string) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE email = $1`
	return r.scanOne(ctx, query, strings.ToLower(email))
}

func (r *Repo) scanOne(ctx context.Context, query string, arg interface{}) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.State,
		&lead.AgeRange, &lead.RetirementTimeline, &lead.InvestableAssets,
		&lead.CurrentAnnuity, &lead.Concerns, &lead.Goals,
		&lead.LeadScore, &lead.QualificationStatus, &lead.Source,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// List retrieves leads matching the filter, best score first.
func (r *Repo) List(ctx context.Context, filter ListFilter) ([]Lead, error) {
	var conditions []string
	var args []interface{}

	addArg := func(value interface{}) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Query != "" {
		placeholder := addArg("%" + filter.Query + "%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE %s OR email ILIKE %s)", placeholder, placeholder))
	}
	if filter.Status != "" {
		conditions = append(conditions, "qualification_status = "+addArg(filter.Status))
	}
	if filter.Source != "" {
		conditions = append(conditions, "source = "+addArg(filter.Source))
	}
	if filter.MinScore != nil {
		conditions = append(conditions, "lead_score >= "+addArg(*filter.MinScore))
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY lead_score DESC, created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query += " LIMIT " + addArg(limit)
	if filter.Offset > 0 {
		query += " OFFSET " + addArg(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.State,
			&lead.AgeRange, &lead.RetirementTimeline, &lead.InvestableAssets,
			&lead.CurrentAnnuity, &lead.Concerns, &lead.Goals,
			&lead.LeadScore, &lead.QualificationStatus, &lead.Source,
			&lead.CreatedAt, &lead.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

// Stats counts leads per tier. The five counts run concurrently on the
// pool.
func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	group, ctx := errgroup.WithContext(ctx)
	count := func(dest *int64, query string, args ...interface{}) {
		group.Go(func() error {
			return r.pool.QueryRow(ctx, query, args...).Scan(dest)
		})
	}

	count(&stats.Total, `SELECT COUNT(*) FROM leads`)
	count(&stats.HighValue, `SELECT COUNT(*) FROM leads WHERE qualification_status = $1`, "High Value")
	count(&stats.Qualified, `SELECT COUNT(*) FROM leads WHERE qualification_status = $1`, "Qualified")
	count(&stats.Warm, `SELECT COUNT(*) FROM leads WHERE qualification_status = $1`, "Warm")
	count(&stats.Cold, `SELECT COUNT(*) FROM leads WHERE qualification_status = $1`, "Cold")

	if err := group.Wait(); err != nil {
		return Stats{}, fmt.Errorf("lead stats: %w", err)
	}
	return stats, nil
}
