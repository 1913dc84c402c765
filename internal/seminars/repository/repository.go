package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"provision_chat_backend/platform/apperr"
)

const (
	seminarNotFoundMessage      = "seminar not found"
	registrationNotFoundMessage = "registration not found"
)

const seminarColumns = `id, title, description, topic, date, duration_minutes,
	location_type, location_details, capacity, registered_count, status,
	created_at, updated_at`

const registrationColumns = `id, seminar_id, lead_id, guest_name, guest_email, guest_phone,
	reminder_preference, confirmation_sent, reminder_sent, attendance_status,
	check_in_time, feedback, rating, follow_up_interest, created_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new seminars repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CreateSeminar inserts a new scheduled seminar.
func (r *Repo) CreateSeminar(ctx context.Context, params CreateSeminarParams) (Seminar, error) {
	query := `
		INSERT INTO seminars (title, description, topic, date, duration_minutes,
		                      location_type, location_details, capacity, registered_count, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9)
		RETURNING ` + seminarColumns

	row := r.pool.QueryRow(ctx, query,
		params.Title, params.Description, params.Topic, params.Date, params.DurationMinutes,
		params.LocationType, params.LocationDetails, params.Capacity, StatusScheduled,
	)
	seminar, err := scanSeminar(row)
	if err != nil {
		return Seminar{}, fmt.Errorf("create seminar: %w", err)
	}
	return seminar, nil
}

// GetSeminar retrieves a seminar by ID.
func (r *Repo) GetSeminar(ctx context.Context, id int64) (Seminar, error) {
	query := `SELECT ` + seminarColumns + ` FROM seminars WHERE id = $1`

	seminar, err := scanSeminar(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Seminar{}, apperr.NotFound(seminarNotFoundMessage)
		}
		return Seminar{}, fmt.Errorf("get seminar: %w", err)
	}
	return seminar, nil
}

// ListUpcoming returns scheduled seminars with a future date.
func (r *Repo) ListUpcoming(ctx context.Context, topic string, limit int) ([]Seminar, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	query := `SELECT ` + seminarColumns + `
		FROM seminars
		WHERE date >= NOW() AND status = $1`
	args := []interface{}{StatusScheduled}
	if topic != "" {
		query += ` AND topic = $2`
		args = append(args, topic)
	}
	query += fmt.Sprintf(` ORDER BY date ASC LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list upcoming seminars: %w", err)
	}
	defer rows.Close()

	seminars := make([]Seminar, 0)
	for rows.Next() {
		seminar, err := scanSeminar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seminar: %w", err)
		}
		seminars = append(seminars, seminar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seminars: %w", err)
	}
	return seminars, nil
}

// Register inserts an RSVP inside a transaction. The seminar row is
// locked so the capacity check and the seat-count bump are atomic.
func (r *Repo) Register(ctx context.Context, params RegisterParams) (Registration, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Registration{}, fmt.Errorf("begin registration: %w", err)
	}
	defer tx.Rollback(ctx)

	var capacity, registered int
	err = tx.QueryRow(ctx,
		`SELECT capacity, registered_count FROM seminars WHERE id = $1 FOR UPDATE`,
		params.SeminarID,
	).Scan(&capacity, &registered)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Registration{}, apperr.NotFound(seminarNotFoundMessage)
		}
		return Registration{}, fmt.Errorf("lock seminar: %w", err)
	}
	if registered >= capacity {
		return Registration{}, apperr.Conflict(fmt.Sprintf("seminar is full (capacity: %d)", capacity))
	}

	var duplicates int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM seminar_registrations
		WHERE seminar_id = $1
		  AND (($2::bigint IS NOT NULL AND lead_id = $2)
		    OR ($3 <> '' AND guest_email = $3))`,
		params.SeminarID, params.LeadID, params.GuestEmail,
	).Scan(&duplicates)
	if err != nil {
		return Registration{}, fmt.Errorf("check duplicate registration: %w", err)
	}
	if duplicates > 0 {
		return Registration{}, apperr.Conflict("already registered for this seminar")
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO seminar_registrations (seminar_id, lead_id, guest_name, guest_email, guest_phone,
		                                   reminder_preference, attendance_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+registrationColumns,
		params.SeminarID, params.LeadID, params.GuestName, params.GuestEmail,
		params.GuestPhone, params.ReminderPreference, AttendanceRegistered,
	)
	registration, err := scanRegistration(row)
	if err != nil {
		return Registration{}, fmt.Errorf("insert registration: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE seminars SET registered_count = registered_count + 1, updated_at = NOW() WHERE id = $1`,
		params.SeminarID,
	); err != nil {
		return Registration{}, fmt.Errorf("bump registered count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Registration{}, fmt.Errorf("commit registration: %w", err)
	}
	return registration, nil
}

// GetRegistration retrieves one registration.
func (r *Repo) GetRegistration(ctx context.Context, id int64) (Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM seminar_registrations WHERE id = $1`

	registration, err := scanRegistration(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Registration{}, apperr.NotFound(registrationNotFoundMessage)
		}
		return Registration{}, fmt.Errorf("get registration: %w", err)
	}
	return registration, nil
}

// ListRegistrations returns all registrations for a seminar.
func (r *Repo) ListRegistrations(ctx context.Context, seminarID int64) ([]Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM seminar_registrations WHERE seminar_id = $1 ORDER BY id`
	return r.queryRegistrations(ctx, query, seminarID)
}

// SetAttendance updates the attendance status. Checking in also stamps
// the check-in time.
func (r *Repo) SetAttendance(ctx context.Context, registrationID int64, status string) (Registration, error) {
	query := `
		UPDATE seminar_registrations
		SET attendance_status = $2,
		    check_in_time = CASE WHEN $2 = $3 THEN NOW() ELSE check_in_time END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + registrationColumns

	registration, err := scanRegistration(r.pool.QueryRow(ctx, query, registrationID, status, AttendanceAttended))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Registration{}, apperr.NotFound(registrationNotFoundMessage)
		}
		return Registration{}, fmt.Errorf("set attendance: %w", err)
	}
	return registration, nil
}

// AddFeedback stores the attendee's feedback and rating.
func (r *Repo) AddFeedback(ctx context.Context, registrationID int64, feedback string, rating int, followUp bool) (Registration, error) {
	query := `
		UPDATE seminar_registrations
		SET feedback = $2, rating = $3, follow_up_interest = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + registrationColumns

	registration, err := scanRegistration(r.pool.QueryRow(ctx, query, registrationID, feedback, rating, followUp))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Registration{}, apperr.NotFound(registrationNotFoundMessage)
		}
		return Registration{}, fmt.Errorf("add feedback: %w", err)
	}
	return registration, nil
}

// FollowUps returns attended registrations interested in follow-up.
func (r *Repo) FollowUps(ctx context.Context, seminarID int64) ([]Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM seminar_registrations
		WHERE attendance_status = $1 AND follow_up_interest = true`
	args := []interface{}{AttendanceAttended}
	if seminarID > 0 {
		query += ` AND seminar_id = $2`
		args = append(args, seminarID)
	}
	query += ` ORDER BY id`
	return r.queryRegistrations(ctx, query, args...)
}

// MarkConfirmationSent flags the confirmation email as delivered.
func (r *Repo) MarkConfirmationSent(ctx context.Context, registrationID int64) error {
	return r.markSent(ctx, registrationID, "confirmation_sent")
}

// MarkReminderSent flags the reminder as delivered.
func (r *Repo) MarkReminderSent(ctx context.Context, registrationID int64) error {
	return r.markSent(ctx, registrationID, "reminder_sent")
}

func (r *Repo) markSent(ctx context.Context, registrationID int64, column string) error {
	query := fmt.Sprintf(
		`UPDATE seminar_registrations SET %s = true, updated_at = NOW() WHERE id = $1`, column)

	tag, err := r.pool.Exec(ctx, query, registrationID)
	if err != nil {
		return fmt.Errorf("mark %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(registrationNotFoundMessage)
	}
	return nil
}

func (r *Repo) queryRegistrations(ctx context.Context, query string, args ...interface{}) ([]Registration, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]Registration, 0)
	for rows.Next() {
		registration, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		registrations = append(registrations, registration)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return registrations, nil
}

func scanSeminar(row pgx.Row) (Seminar, error) {
	var s Seminar
	var updatedAt *time.Time
	err := row.Scan(
		&s.ID, &s.Title, &s.Description, &s.Topic, &s.Date, &s.DurationMinutes,
		&s.LocationType, &s.LocationDetails, &s.Capacity, &s.RegisteredCount, &s.Status,
		&s.CreatedAt, &updatedAt,
	)
	if err != nil {
		return Seminar{}, err
	}
	s.UpdatedAt = updatedAt
	return s, nil
}

func scanRegistration(row pgx.Row) (Registration, error) {
	var reg Registration
	err := row.Scan(
		&reg.ID, &reg.SeminarID, &reg.LeadID, &reg.GuestName, &reg.GuestEmail, &reg.GuestPhone,
		&reg.ReminderPreference, &reg.ConfirmationSent, &reg.ReminderSent, &reg.AttendanceStatus,
		&reg.CheckInTime, &reg.Feedback, &reg.Rating, &reg.FollowUpInterest, &reg.CreatedAt,
	)
	if err != nil {
		return Registration{}, err
	}
	return reg, nil
}
