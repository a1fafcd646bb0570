package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"golfalerts/internal/catalog"
	"golfalerts/internal/entities"
	"golfalerts/internal/utils"
)

const ForeUpBaseURL = "https://foreupsoftware.com"

type foreUpTeeTime struct {
	Time           string          `json:"time"`
	ScheduleID     int             `json:"schedule_id"`
	AvailableSpots int             `json:"available_spots"`
	GreenFee       decimal.Decimal `json:"green_fee"`
	TeeSheetHoles  int             `json:"teesheet_holes"`
	CourseName     string          `json:"course_name"`
}

// ForeUp takes query parameters with an MM-DD-YYYY date and reports
// remaining spots directly. Times are "YYYY-MM-DD HH:MM".
type ForeUp struct {
	client  *http.Client
	baseURL string
}

func NewForeUp(client *http.Client, baseURL string) *ForeUp {
	if baseURL == "" {
		baseURL = ForeUpBaseURL
	}
	return &ForeUp{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *ForeUp) Provider() catalog.Provider {
	return catalog.ForeUp
}

func (a *ForeUp) Fetch(ctx context.Context, course catalog.Course, date string) ([]entities.TeeTimeSlot, error) {
	foreUpDate, err := reformatDate(date, "01-02-2006")
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "%v", err)
	}

	schedule := strconv.Itoa(course.ScheduleID)
	q := url.Values{}
	q.Set("time", "all")
	q.Set("date", foreUpDate)
	q.Set("holes", "all")
	q.Set("players", "0")
	q.Set("booking_class", course.BookingClass)
	q.Set("schedule_id", schedule)
	q.Set("schedule_ids[]", schedule)
	q.Set("specials_only", "0")
	q.Set("api_key", "no_limits")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/index.php/api/booking/times?"+q.Encode(), nil)
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", a.baseURL+"/index.php/booking/"+strconv.Itoa(course.CourseID))

	status, body, err := do(a.client, req)
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "request failed: %v", err)
	}
	if !isSuccess(status) {
		return noSlots(), upstreamError(a.Provider(), course, "status %d", status)
	}

	var data []foreUpTeeTime
	if err := json.Unmarshal(body, &data); err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "decode response: %v", err)
	}
	return normalizeForeUp(course, date, data, time.Now().UTC()), nil
}

func normalizeForeUp(course catalog.Course, date string, times []foreUpTeeTime, now time.Time) []entities.TeeTimeSlot {
	results := noSlots()
	for _, tt := range times {
		if tt.ScheduleID != 0 && course.ScheduleID != 0 && tt.ScheduleID != course.ScheduleID {
			continue
		}
		if tt.AvailableSpots <= 0 {
			continue
		}
		clock := tt.Time
		if i := strings.LastIndex(clock, " "); i >= 0 {
			clock = clock[i+1:]
		}
		minutes, err := utils.ParseClock(clock)
		if err != nil {
			continue
		}
		results = append(results, newSlot(course, date, minutes, tt.AvailableSpots, tt.GreenFee, tt.TeeSheetHoles, now))
	}
	return results
}
