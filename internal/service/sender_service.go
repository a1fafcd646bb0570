package service

import (
	"fmt"
	"strings"

	"golfalerts/internal/catalog"
	"golfalerts/internal/entities"
)

const (
	maxListedTimes   = 5
	defaultPartySize = 4
)

// FormatAlertMessage builds the SMS body for a fired alert. At most five
// tee times are listed.
func FormatAlertMessage(course catalog.Course, date string, matches []entities.TeeTimeSlot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tee times open at %s on %s: %s", course.Name, date, strings.Join(displayTimes(matches, maxListedTimes), ", "))
	if extra := len(matches) - maxListedTimes; extra > 0 {
		fmt.Fprintf(&b, " (+%d more)", extra)
	}
	b.WriteString(".")
	if course.BookingURL != "" {
		b.WriteString(" Book: " + course.BookingURL)
	}
	return b.String()
}

func displayTimes(slots []entities.TeeTimeSlot, limit int) []string {
	if len(slots) < limit {
		limit = len(slots)
	}
	out := make([]string, 0, limit)
	for _, s := range slots[:limit] {
		out = append(out, s.TimeDisplay)
	}
	return out
}
