package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"golfalerts/internal/catalog"
	"golfalerts/internal/credential"
	"golfalerts/internal/entities"
	apperrors "golfalerts/internal/errors"
)

const MemberSportsAPIURL = "https://api.membersports.com/api/v1/golfclubs/onlineBookingTeeTimes"

type memberSportsRequest struct {
	ConfigurationTypeId int    `json:"configurationTypeId"`
	Date                string `json:"date"`
	GolfClubGroupId     int    `json:"golfClubGroupId"`
	GolfClubId          int    `json:"golfClubId"`
	GolfCourseId        int    `json:"golfCourseId"`
	GroupSheetTypeId    int    `json:"groupSheetTypeId"`
}

type memberSportsItem struct {
	Name                    string          `json:"name"`
	GolfClubId              int             `json:"golfClubId"`
	GolfCourseId            int             `json:"golfCourseId"`
	Price                   decimal.Decimal `json:"price"`
	PlayerCount             *int            `json:"playerCount"`
	HolesRequirementTypeId  int             `json:"holesRequirementTypeId"`
	GolfCourseNumberOfHoles int             `json:"golfCourseNumberOfHoles"`
}

type memberSportsSlot struct {
	TeeTime int                `json:"teeTime"`
	Items   []memberSportsItem `json:"items"`
}

// MemberSports posts a structured filter with an ISO date. The API is gated
// by an x-api-key header taken from the shared credential store; a 401/403
// triggers one refresh and one replay.
type MemberSports struct {
	client    *http.Client
	apiURL    string
	store     *credential.Store
	refresher credential.Refresher
	logger    *zap.Logger
}

func NewMemberSports(client *http.Client, apiURL string, store *credential.Store, refresher credential.Refresher, logger *zap.Logger) *MemberSports {
	if apiURL == "" {
		apiURL = MemberSportsAPIURL
	}
	return &MemberSports{client: client, apiURL: apiURL, store: store, refresher: refresher, logger: logger}
}

func (a *MemberSports) Provider() catalog.Provider {
	return catalog.MemberSports
}

func (a *MemberSports) Fetch(ctx context.Context, course catalog.Course, date string) ([]entities.TeeTimeSlot, error) {
	payload, err := json.Marshal(memberSportsRequest{
		ConfigurationTypeId: course.ConfigType,
		Date:                date,
		GolfClubGroupId:     course.GroupID,
		GolfClubId:          course.ClubID,
		GolfCourseId:        course.CourseID,
		GroupSheetTypeId:    0,
	})
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "encode request: %v", err)
	}

	key := a.store.Read()
	status, body, err := a.post(ctx, payload, key)
	if err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "request failed: %v", err)
	}

	if isAuthRejection(status) {
		a.logger.Info("membersports rejected credential, refreshing", zap.Int("status", status), zap.Int("club_id", course.ClubID))
		if a.refresher == nil || !a.refresher.Refresh(ctx, key) {
			return noSlots(), authError(course, status)
		}
		status, body, err = a.post(ctx, payload, a.store.Read())
		if err != nil {
			return noSlots(), upstreamError(a.Provider(), course, "replay failed: %v", err)
		}
		if isAuthRejection(status) {
			return noSlots(), authError(course, status)
		}
	}

	if !isSuccess(status) {
		return noSlots(), upstreamError(a.Provider(), course, "status %d", status)
	}

	var slots []memberSportsSlot
	if err := json.Unmarshal(body, &slots); err != nil {
		return noSlots(), upstreamError(a.Provider(), course, "decode response: %v", err)
	}
	return normalizeMemberSports(course, date, slots, time.Now().UTC()), nil
}

func (a *MemberSports) post(ctx context.Context, payload []byte, key string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", key)
	req.Header.Set("Referer", "https://app.membersports.com/")
	return do(a.client, req)
}

func isAuthRejection(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func authError(course catalog.Course, status int) error {
	return fmt.Errorf("%s %q: status %d after refresh: %w: %w",
		catalog.MemberSports, course.Name, status, apperrors.ErrUpstreamUnavailable, apperrors.ErrAuthExpired)
}

// normalizeMemberSports walks slot→items. Items of sibling courses under the
// same club are dropped, as are full ones; capacity is four players.
func normalizeMemberSports(course catalog.Course, date string, slots []memberSportsSlot, now time.Time) []entities.TeeTimeSlot {
	results := noSlots()
	for _, slot := range slots {
		if !validMinutes(slot.TeeTime) {
			continue
		}
		for _, item := range slot.Items {
			if item.GolfClubId != 0 && item.GolfClubId != course.ClubID {
				continue
			}
			if item.GolfCourseId != 0 && course.CourseID != 0 && item.GolfCourseId != course.CourseID {
				continue
			}
			if item.PlayerCount == nil {
				continue
			}
			spots := defaultCapacity - *item.PlayerCount
			if spots <= 0 {
				continue
			}

			holes := item.GolfCourseNumberOfHoles
			if holes == 0 && item.HolesRequirementTypeId == 2 {
				holes = 18
			}
			results = append(results, newSlot(course, date, slot.TeeTime, spots, item.Price, holes, now))
		}
	}
	return results
}
