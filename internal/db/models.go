package db

import "time"

// Alert is a standing request to be texted when a matching tee time opens.
// NotifiedAt is nil until the alert fires; an alert fires at most once.
type Alert struct {
	ID         int        `json:"id"`
	Phone      string     `json:"phone"`
	Provider   string     `json:"provider"`
	ClubID     int        `json:"club_id"`
	CourseName string     `json:"course_name"`
	Date       string     `json:"date"`
	TimeStart  int        `json:"time_start"`
	TimeEnd    int        `json:"time_end"`
	MinSpots   int        `json:"min_spots"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	NotifiedAt *time.Time `json:"notified_at"`
}

type AlertStatus string

const (
	AlertStatusActive      AlertStatus = "active"
	AlertStatusNotified    AlertStatus = "notified"
	AlertStatusDeactivated AlertStatus = "deactivated"
)

// Status reports where the alert sits in its lifecycle.
func (a Alert) Status() AlertStatus {
	switch {
	case !a.Active:
		return AlertStatusDeactivated
	case a.NotifiedAt != nil:
		return AlertStatusNotified
	default:
		return AlertStatusActive
	}
}
