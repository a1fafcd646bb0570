package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"golfalerts/internal/catalog"
	"golfalerts/internal/entities"
	apperrors "golfalerts/internal/errors"
	"golfalerts/internal/utils"
)

const (
	userAgent       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/144.0.0.0 Safari/537.36"
	maxBodyBytes    = 8 << 20
	defaultCapacity = 4
)

// Adapter translates a (course, date) query into one provider's request
// and its response into canonical slots. On any upstream failure it returns
// an empty slice and an error wrapping ErrUpstreamUnavailable.
type Adapter interface {
	Provider() catalog.Provider
	Fetch(ctx context.Context, course catalog.Course, date string) ([]entities.TeeTimeSlot, error)
}

// OpsReporter receives operator notices.
type OpsReporter interface {
	NotifyOps(ctx context.Context, subject, body string)
}

func noSlots() []entities.TeeTimeSlot {
	return []entities.TeeTimeSlot{}
}

func upstreamError(p catalog.Provider, course catalog.Course, format string, args ...interface{}) error {
	return fmt.Errorf("%s %q: %s: %w", p, course.Name, fmt.Sprintf(format, args...), apperrors.ErrUpstreamUnavailable)
}

// do executes req and returns the status and body. Only transport and
// read failures are errors; status handling is left to the adapter.
func do(client *http.Client, req *http.Request) (int, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// readBody drains and closes resp.Body, keeping at most maxBodyBytes.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}

// newSlot is the only constructor for slots so display time always agrees
// with the minute value.
func newSlot(course catalog.Course, date string, minutes, spots int, price decimal.Decimal, holes int, now time.Time) entities.TeeTimeSlot {
	if holes <= 0 {
		holes = course.Holes
	}
	if holes <= 0 {
		holes = 18
	}
	return entities.TeeTimeSlot{
		Provider:       string(course.Provider),
		CourseID:       course.ClubID,
		CourseName:     course.Name,
		Date:           date,
		TimeMinutes:    minutes,
		TimeDisplay:    utils.FormatMinutes(minutes),
		SpotsAvailable: spots,
		Price:          price,
		Holes:          holes,
		BookingURL:     course.BookingURL,
		ScrapedAt:      now,
	}
}

func validMinutes(m int) bool {
	return m >= 0 && m < utils.MinutesPerDay
}

// dedupeFirst keeps the first slot per display time per course. Upstreams
// list one row per rate category for the same tee time, default rate first.
func dedupeFirst(slots []entities.TeeTimeSlot) []entities.TeeTimeSlot {
	seen := make(map[string]bool, len(slots))
	out := make([]entities.TeeTimeSlot, 0, len(slots))
	for _, s := range slots {
		k := s.CourseName + "|" + s.TimeDisplay
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

func reformatDate(date, layout string) (string, error) {
	t, err := utils.ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}
