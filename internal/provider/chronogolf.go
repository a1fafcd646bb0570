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

const (
	ChronogolfBaseURL  = "https://www.chronogolf.com"
	chronogolfPageSize = 24
	chronogolfMaxPages = 10
)

type chronogolfResponse struct {
	Status   string           `json:"status"`
	TeeTimes []chronogolfSlot `json:"teetimes"`
}

type chronogolfSlot struct {
	StartTime     string `json:"start_time"`
	MaxPlayerSize int    `json:"max_player_size"`
	OutOfCapacity bool   `json:"out_of_capacity"`
	Course        struct {
		ID            int    `json:"id"`
		Name          string `json:"name"`
		BookableHoles []int  `json:"bookable_holes"`
	} `json:"course"`
	DefaultPrice struct {
		GreenFee decimal.Decimal `json:"green_fee"`
	} `json:"default_price"`
}

// Chronogolf queries the marketplace by query parameters with an ISO date.
// Times come back as bare 24-hour "H:MM"; max_player_size is the number of
// spots still open.
type Chronogolf struct {
	client  *http.Client
	baseURL string
}

func NewChronogolf(client *http.Client, baseURL string) *Chronogolf {
	if baseURL == "" {
		baseURL = ChronogolfBaseURL
	}
	return &Chronogolf{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *Chronogolf) Provider() catalog.Provider {
	return catalog.Chronogolf
}

func (a *Chronogolf) Fetch(ctx context.Context, course catalog.Course, date string) ([]entities.TeeTimeSlot, error) {
	var all []chronogolfSlot
	for page := 1; page <= chronogolfMaxPages; page++ {
		q := url.Values{}
		q.Set("start_date", date)
		q.Set("course_ids", strconv.Itoa(course.CourseID))
		q.Set("holes", "9,18")
		q.Set("page", strconv.Itoa(page))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/marketplace/v2/teetimes?"+q.Encode(), nil)
		if err != nil {
			return noSlots(), upstreamError(a.Provider(), course, "build request: %v", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		status, body, err := do(a.client, req)
		if err != nil {
			return noSlots(), upstreamError(a.Provider(), course, "request failed: %v", err)
		}
		if !isSuccess(status) {
			return noSlots(), upstreamError(a.Provider(), course, "status %d", status)
		}

		var data chronogolfResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return noSlots(), upstreamError(a.Provider(), course, "decode response: %v", err)
		}
		all = append(all, data.TeeTimes...)
		if len(data.TeeTimes) < chronogolfPageSize {
			break
		}
	}
	return normalizeChronogolf(course, date, all, time.Now().UTC()), nil
}

func normalizeChronogolf(course catalog.Course, date string, slots []chronogolfSlot, now time.Time) []entities.TeeTimeSlot {
	results := noSlots()
	for _, s := range slots {
		if s.Course.ID != 0 && course.CourseID != 0 && s.Course.ID != course.CourseID {
			continue
		}
		if s.OutOfCapacity || s.MaxPlayerSize <= 0 {
			continue
		}
		minutes, err := utils.ParseClock(s.StartTime)
		if err != nil {
			continue
		}
		results = append(results, newSlot(course, date, minutes, s.MaxPlayerSize, s.DefaultPrice.GreenFee, maxHoles(s.Course.BookableHoles), now))
	}
	return results
}

func maxHoles(holes []int) int {
	best := 0
	for _, h := range holes {
		if h > best {
			best = h
		}
	}
	return best
}
