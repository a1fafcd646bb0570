package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// TeeTimeSlot is one normalized opening. Slots are produced fresh on every
// acquisition and never persisted.
type TeeTimeSlot struct {
	Provider       string          `json:"provider"`
	CourseID       int             `json:"course_id"`
	CourseName     string          `json:"course_name"`
	Date           string          `json:"date"`
	TimeMinutes    int             `json:"time_minutes"`
	TimeDisplay    string          `json:"time_display"`
	SpotsAvailable int             `json:"spots_available"`
	Price          decimal.Decimal `json:"price"`
	Holes          int             `json:"holes"`
	BookingURL     string          `json:"booking_url,omitempty"`
	ScrapedAt      time.Time       `json:"scraped_at"`
}
