package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"golfalerts/internal/db"
	apperrors "golfalerts/internal/errors"
)

const uniqueViolation = "23505"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS alerts (
		id          SERIAL PRIMARY KEY,
		phone       TEXT NOT NULL,
		provider    TEXT NOT NULL DEFAULT 'membersports',
		club_id     INTEGER NOT NULL,
		course_name TEXT NOT NULL,
		date        TEXT NOT NULL,
		time_start  INTEGER NOT NULL,
		time_end    INTEGER NOT NULL,
		min_spots   INTEGER NOT NULL DEFAULT 1,
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		notified_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS alerts_due_idx ON alerts (date) WHERE active AND notified_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS alerts_armed_unique ON alerts
		(phone, provider, club_id, course_name, date, time_start, time_end, min_spots)
		WHERE active AND notified_at IS NULL`,
}

const alertColumns = `id, phone, provider, club_id, course_name, date, time_start, time_end, min_spots, active, created_at, notified_at`

type AlertRepository struct {
	DB *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{DB: db}
}

func (r *AlertRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema: %w", err)
		}
	}
	return nil
}

// ListDue returns armed alerts dated today or later. Dates are ISO
// strings so text comparison orders them.
func (r *AlertRepository) ListDue(ctx context.Context, today string) ([]db.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts
		WHERE active AND notified_at IS NULL AND date >= $1
		ORDER BY id`
	return r.queryAlerts(ctx, query, today)
}

// ListByPhone lists active alerts for one phone, or all when phone is empty.
func (r *AlertRepository) ListByPhone(ctx context.Context, phone string) ([]db.Alert, error) {
	if phone == "" {
		return r.queryAlerts(ctx, `SELECT `+alertColumns+` FROM alerts WHERE active ORDER BY created_at DESC, id DESC`)
	}
	return r.queryAlerts(ctx, `SELECT `+alertColumns+` FROM alerts WHERE active AND phone = $1 ORDER BY created_at DESC, id DESC`, phone)
}

func (r *AlertRepository) GetByID(ctx context.Context, id int) (*db.Alert, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id)
	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("alert %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting alert %d: %w", id, err)
	}
	return &a, nil
}

// FindDuplicate reports whether an identical armed alert exists.
func (r *AlertRepository) FindDuplicate(ctx context.Context, a db.Alert) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM alerts
		WHERE active AND notified_at IS NULL
		  AND phone = $1 AND provider = $2 AND club_id = $3 AND course_name = $4
		  AND date = $5 AND time_start = $6 AND time_end = $7 AND min_spots = $8
	)`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query,
		a.Phone, a.Provider, a.ClubID, a.CourseName, a.Date, a.TimeStart, a.TimeEnd, a.MinSpots,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking duplicate alert: %w", err)
	}
	return exists, nil
}

// Insert stores a new alert and fills in its id and created_at. A race
// with an identical insert surfaces as a validation error.
func (r *AlertRepository) Insert(ctx context.Context, a *db.Alert) error {
	query := `INSERT INTO alerts (phone, provider, club_id, course_name, date, time_start, time_end, min_spots, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query,
		a.Phone, a.Provider, a.ClubID, a.CourseName, a.Date, a.TimeStart, a.TimeEnd, a.MinSpots,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperrors.NewValidationError("an identical alert is already active")
		}
		return fmt.Errorf("error inserting alert: %w", err)
	}
	a.Active = true
	return nil
}

// MarkNotified stamps notified_at once. A second call for the same row
// affects nothing and reports ErrNotFound.
func (r *AlertRepository) MarkNotified(ctx context.Context, id int, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE alerts SET notified_at = $2 WHERE id = $1 AND notified_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("error marking alert %d notified: %w", id, err)
	}
	return requireRow(res, id)
}

func (r *AlertRepository) Deactivate(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE alerts SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deactivating alert %d: %w", id, err)
	}
	return requireRow(res, id)
}

// PurgeBefore deactivates unfired alerts whose date has passed.
func (r *AlertRepository) PurgeBefore(ctx context.Context, today string) ([]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`UPDATE alerts SET active = FALSE WHERE active AND notified_at IS NULL AND date < $1 RETURNING id`, today)
	if err != nil {
		return nil, fmt.Errorf("error expiring past alerts: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning alert ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

func (r *AlertRepository) queryAlerts(ctx context.Context, query string, args ...interface{}) ([]db.Alert, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying alerts: %w", err)
	}
	defer rows.Close()

	alerts := []db.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return alerts, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(s scanner) (db.Alert, error) {
	var a db.Alert
	var notified pq.NullTime
	err := s.Scan(&a.ID, &a.Phone, &a.Provider, &a.ClubID, &a.CourseName, &a.Date,
		&a.TimeStart, &a.TimeEnd, &a.MinSpots, &a.Active, &a.CreatedAt, &notified)
	if err != nil {
		return db.Alert{}, err
	}
	if notified.Valid {
		t := notified.Time
		a.NotifiedAt = &t
	}
	return a, nil
}

func requireRow(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("alert %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
