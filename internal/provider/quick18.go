package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
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

var quick18NumberRe = regexp.MustCompile(`\d+`)

// Quick18 scrapes the public search matrix. Dates are YYYYMMDD, times are
// 12-hour "H:MM" with the AM/PM marker in a nested div, and one tee time
// appears once per rate row. A matrix can list several courses of one
// facility, so rows are filtered by the course's upstream name.
type Quick18 struct {
	client *http.Client
	// baseURL overrides https://{subdomain}.quick18.com when set.
	baseURL string
}

func NewQuick18(client *http.Client, baseURL string) *Quick18 {
	return &Quick18{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *Quick18) Provider() catalog.Provider {
	return catalog.Quick18
}

func (a *Quick18) Fetch(ctx context.Context, course catalog.Course, date string) ([]entities.TeeTimeSlot, error) {
	teeDate, err := reformatDate(date, "20060102")
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "%v", err)
	}

	base := a.baseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.quick18.com", course.Subdomain)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/teetimes/searchmatrix?teedate="+teeDate, nil)
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "build request: %v", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("User-Agent", userAgent)

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
	return normalizeQuick18(course, date, doc, time.Now().UTC()), nil
}

func normalizeQuick18(course catalog.Course, date string, doc *goquery.Document, now time.Time) []entities.TeeTimeSlot {
	results := noSlots()
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		timeCell := row.Find(".mtrxTeeTimes").First()
		if timeCell.Length() == 0 {
			return
		}
		minutes, err := utils.ParseClock(strings.Join(strings.Fields(timeCell.Text()), " "))
		if err != nil {
			return
		}

		rowCourse := strings.TrimSpace(row.Find(".mtrxCourse").First().Text())
		// Rows naming a course only belong to the entry configured with that name.
		if rowCourse != "" && !strings.EqualFold(rowCourse, course.UpstreamName) {
			return
		}

		spots := quick18Players(row.Find(".matrixPlayers").First().Text())
		if spots <= 0 {
			return
		}

		price := decimal.Zero
		priceText := strings.TrimPrefix(strings.TrimSpace(row.Find(".mtrxPrice").First().Text()), "$")
		if p, err := decimal.NewFromString(strings.ReplaceAll(priceText, ",", "")); err == nil {
			price = p
		}

		holes := 0
		lc := strings.ToLower(rowCourse)
		if strings.Contains(lc, "back 9") || strings.Contains(lc, "front 9") || strings.HasSuffix(lc, " 9") {
			holes = 9
		}
		results = append(results, newSlot(course, date, minutes, spots, price, holes, now))
	})
	return dedupeFirst(results)
}

// quick18Players reads "1 to 4 players" as 4 and "1 player" as 1.
func quick18Players(text string) int {
	nums := quick18NumberRe.FindAllString(text, -1)
	if len(nums) == 0 {
		return 0
	}
	n, err := strconv.Atoi(nums[len(nums)-1])
	if err != nil {
		return 0
	}
	return n
}
