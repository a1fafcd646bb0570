package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const MinutesPerDay = 24 * 60

// FormatMinutes renders minutes since midnight as "h:mm AM".
// Hour 0 and hour 12 both display as 12.
func FormatMinutes(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	hours := minutes / 60
	mins := minutes % 60

	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	if hours > 12 {
		hours -= 12
	}
	if hours == 0 {
		hours = 12
	}
	return fmt.Sprintf("%d:%02d %s", hours, mins, period)
}

// ParseClock reads a provider time string into minutes since midnight.
// Accepted forms are 24-hour "H:MM", "HH:MM", "HH:MM:SS" and 12-hour
// "H:MM AM" / "H:MMpm".
func ParseClock(s string) (int, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return 0, fmt.Errorf("empty time")
	}

	if strings.HasSuffix(raw, "AM") || strings.HasSuffix(raw, "PM") {
		period := raw[len(raw)-2:]
		hours, mins, err := splitClock(strings.TrimSpace(raw[:len(raw)-2]))
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", s, err)
		}
		if hours < 1 || hours > 12 {
			return 0, fmt.Errorf("parse %q: hour %d out of range", s, hours)
		}
		if hours == 12 {
			hours = 0
		}
		if period == "PM" {
			hours += 12
		}
		return hours*60 + mins, nil
	}

	hours, mins, err := splitClock(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if hours > 23 {
		return 0, fmt.Errorf("parse %q: hour %d out of range", s, hours)
	}
	return hours*60 + mins, nil
}

func splitClock(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("expected H:MM")
	}
	values := make([]int, len(parts))
	for i, p := range parts {
		if p == "" || len(p) > 2 || strings.Trim(p, "0123456789") != "" {
			return 0, 0, fmt.Errorf("invalid component %q", p)
		}
		values[i], _ = strconv.Atoi(p)
	}
	if len(parts[1]) != 2 || values[1] > 59 {
		return 0, 0, fmt.Errorf("invalid minutes %q", parts[1])
	}
	if len(values) == 3 && values[2] > 59 {
		return 0, 0, fmt.Errorf("invalid seconds %q", parts[2])
	}
	return values[0], values[1], nil
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return t, nil
}
