package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"golfalerts/internal/catalog"
	"golfalerts/internal/entities"
	"golfalerts/internal/utils"
)

var clubCaddieInteractionRe = regexp.MustCompile(`Interaction=([a-zA-Z0-9]+)`)

type clubCaddieSlot struct {
	StartTime        string          `json:"StartTime"`
	PlayersAvailable int             `json:"PlayersAvailable"`
	LowestPrice      decimal.Decimal `json:"LowestPrice"`
	PricingPlan      []struct {
		HoleRate9  *float64 `json:"HoleRate_9"`
		HoleRate18 *float64 `json:"HoleRate_18"`
	} `json:"PricingPlan"`
}

// ClubCaddie needs a session: a GET of the slots page yields cookies and an
// interaction id, then a form POST with an MM/DD/YYYY date returns HTML whose
// hidden inputs carry URL-encoded slot JSON. The same tee time repeats once
// per rate plan.
type ClubCaddie struct {
	client *http.Client
}

func NewClubCaddie(client *http.Client) *ClubCaddie {
	return &ClubCaddie{client: client}
}

func (a *ClubCaddie) Provider() catalog.Provider {
	return catalog.ClubCaddie
}

func (a *ClubCaddie) Fetch(ctx context.Context, course catalog.Course, date string) ([]entities.TeeTimeSlot, error) {
	formDate, err := reformatDate(date, "01/02/2006")
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "%v", err)
	}
	base := strings.TrimRight(course.BaseURL, "/")

	pageURL := base + "/webapi/view/" + course.APIKey + "/slots?" + url.Values{
		"date":     {formDate},
		"player":   {"1"},
		"ratetype": {"any"},
	}.Encode()

	pageReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "build page request: %v", err)
	}
	pageReq.Header.Set("User-Agent", userAgent)

	pageResp, err := a.client.Do(pageReq)
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "page request failed: %v", err)
	}
	pageBody, err := readBody(pageResp)
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "read page: %v", err)
	}
	if !isSuccess(pageResp.StatusCode) {
		return noSlots(), upstreamError(a.Provider(), course, "page status %d", pageResp.StatusCode)
	}

	interaction := ""
	if m := clubCaddieInteractionRe.FindSubmatch(pageBody); len(m) > 1 {
		interaction = string(m[1])
	}

	form := url.Values{
		"date":        {formDate},
		"player":      {"1"},
		"holes":       {"any"},
		"fromtime":    {"0"},
		"totime":      {"23"},
		"minprice":    {"0"},
		"maxprice":    {"9999"},
		"ratetype":    {"any"},
		"HoleGroup":   {"front"},
		"CourseId":    {strconv.Itoa(course.CourseID)},
		"apikey":      {course.APIKey},
		"Interaction": {interaction},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/webapi/TeeTimes", strings.NewReader(form.Encode()))
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Origin", base)
	req.Header.Set("Referer", pageURL)
	req.Header.Set("User-Agent", userAgent)
	for _, c := range pageResp.Cookies() {
		req.AddCookie(c)
	}

	status, body, err := do(a.client, req)
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "request failed: %v", err)
	}
	if !isSuccess(status) {
		return noSlots(), upstreamError(a.Provider(), course, "status %d", status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "parse HTML: %v", err)
	}
	return normalizeClubCaddie(course, date, doc, time.Now().UTC()), nil
}

func normalizeClubCaddie(course catalog.Course, date string, doc *goquery.Document, now time.Time) []entities.TeeTimeSlot {
	results := noSlots()
	doc.Find(`input[name="slot"]`).Each(func(_ int, sel *goquery.Selection) {
		raw, ok := sel.Attr("value")
		if !ok {
			return
		}
		decoded, err := url.QueryUnescape(raw)
		if err != nil {
			return
		}
		var slot clubCaddieSlot
		if err := json.Unmarshal([]byte(decoded), &slot); err != nil {
			return
		}
		if slot.PlayersAvailable <= 0 {
			return
		}
		minutes, err := utils.ParseClock(slot.StartTime)
		if err != nil {
			return
		}

		holes := 0
		if len(slot.PricingPlan) > 0 {
			switch {
			case slot.PricingPlan[0].HoleRate18 != nil:
				holes = 18
			case slot.PricingPlan[0].HoleRate9 != nil:
				holes = 9
			}
		}
		results = append(results, newSlot(course, date, minutes, slot.PlayersAvailable, slot.LowestPrice, holes, now))
	})
	return dedupeFirst(results)
}
