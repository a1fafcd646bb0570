package service

import (
	"context"
	"time"

	"golfalerts/internal/catalog"
	"golfalerts/internal/db"
	"golfalerts/internal/entities"
)

// AlertStore is the persistence the alert and cycle services need.
type AlertStore interface {
	ListDue(ctx context.Context, today string) ([]db.Alert, error)
	ListByPhone(ctx context.Context, phone string) ([]db.Alert, error)
	GetByID(ctx context.Context, id int) (*db.Alert, error)
	FindDuplicate(ctx context.Context, alert db.Alert) (bool, error)
	Insert(ctx context.Context, alert *db.Alert) error
	MarkNotified(ctx context.Context, id int, at time.Time) error
	Deactivate(ctx context.Context, id int) error
}

// Acquirer fetches current tee times for one course.
type Acquirer interface {
	Acquire(ctx context.Context, course catalog.Course, date string) ([]entities.TeeTimeSlot, error)
}

// SMSSender delivers a text message to an E.164 number.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// OpsNotifier delivers operator notices.
type OpsNotifier interface {
	NotifyOps(ctx context.Context, subject, body string)
}
