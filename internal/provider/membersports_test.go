package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"golfalerts/internal/catalog"
	"golfalerts/internal/credential"
	apperrors "golfalerts/internal/errors"
)

const (
	bootstrapKey = "A9814038-9E19-4683-B171-5A06B39147FC"
	rotatedKey   = "5C0FFEE1-2B3A-4C5D-8E9F-0A1B2C3D4E5F"
)

var lakeside = catalog.Course{
	Provider:   catalog.MemberSports,
	Key:        "lakeside",
	Name:       "Lakeside",
	ClubID:     100,
	CourseID:   200,
	GroupID:    1,
	ConfigType: 1,
}

// stubRefresher rotates the store to next, or fails when next is empty.
type stubRefresher struct {
	store *credential.Store
	next  string
	calls int32
}

func (s *stubRefresher) Refresh(_ context.Context, stale string) bool {
	atomic.AddInt32(&s.calls, 1)
	if s.next == "" {
		return false
	}
	s.store.Set(s.next)
	return true
}

func memberSportsServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, req memberSportsRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req memberSportsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, r, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMemberSportsNormalizesScenario(t *testing.T) {
	var got memberSportsRequest
	srv := memberSportsServer(t, func(w http.ResponseWriter, r *http.Request, req memberSportsRequest) {
		got = req
		assert.Equal(t, bootstrapKey, r.Header.Get("x-api-key"))
		w.Write([]byte(`[{"teeTime":600,"items":[{"name":"Lakeside","golfClubId":100,"golfCourseId":200,"price":42.5,"playerCount":2,"golfCourseNumberOfHoles":18}]}]`))
	})

	store := credential.NewStore(bootstrapKey)
	adapter := NewMemberSports(srv.Client(), srv.URL, store, nil, zap.NewNop())

	slots, err := adapter.Fetch(context.Background(), lakeside, "2025-06-01")
	require.NoError(t, err)
	require.Len(t, slots, 1)

	s := slots[0]
	assert.Equal(t, 600, s.TimeMinutes)
	assert.Equal(t, "10:00 AM", s.TimeDisplay)
	assert.Equal(t, 2, s.SpotsAvailable)
	assert.Equal(t, "Lakeside", s.CourseName)
	assert.Equal(t, 100, s.CourseID)
	assert.Equal(t, "2025-06-01", s.Date)
	assert.Equal(t, "42.5", s.Price.String())
	assert.Equal(t, 18, s.Holes)

	assert.Equal(t, "2025-06-01", got.Date)
	assert.Equal(t, 100, got.GolfClubId)
	assert.Equal(t, 200, got.GolfCourseId)
	assert.Equal(t, 1, got.GolfClubGroupId)
	assert.Equal(t, 1, got.ConfigurationTypeId)
}

func TestMemberSportsFiltersSiblingsAndFullSlots(t *testing.T) {
	srv := memberSportsServer(t, func(w http.ResponseWriter, r *http.Request, _ memberSportsRequest) {
		w.Write([]byte(`[
			{"teeTime":420,"items":[
				{"name":"Lakeside","golfClubId":100,"golfCourseId":200,"price":40,"playerCount":4},
				{"name":"Lakeside Par 3","golfClubId":100,"golfCourseId":201,"price":15,"playerCount":0},
				{"name":"Other Club","golfClubId":999,"price":30,"playerCount":1},
				{"name":"Lakeside","golfClubId":100,"golfCourseId":200,"price":40}
			]},
			{"teeTime":430,"items":[{"name":"Lakeside","golfClubId":100,"golfCourseId":200,"price":40,"playerCount":3}]},
			{"teeTime":1500,"items":[{"name":"Lakeside","golfClubId":100,"golfCourseId":200,"price":40,"playerCount":0}]}
		]`))
	})

	adapter := NewMemberSports(srv.Client(), srv.URL, credential.NewStore(bootstrapKey), nil, zap.NewNop())
	slots, err := adapter.Fetch(context.Background(), lakeside, "2025-06-01")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 430, slots[0].TimeMinutes)
	assert.Equal(t, 1, slots[0].SpotsAvailable)
}

func TestMemberSportsRefreshesOnceAndReplays(t *testing.T) {
	var calls int32
	srv := memberSportsServer(t, func(w http.ResponseWriter, r *http.Request, _ memberSportsRequest) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("x-api-key") != rotatedKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[{"teeTime":480,"items":[{"golfClubId":100,"golfCourseId":200,"price":35,"playerCount":1}]}]`))
	})

	store := credential.NewStore(bootstrapKey)
	refresher := &stubRefresher{store: store, next: rotatedKey}
	adapter := NewMemberSports(srv.Client(), srv.URL, store, refresher, zap.NewNop())

	slots, err := adapter.Fetch(context.Background(), lakeside, "2025-06-01")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "8:00 AM", slots[0].TimeDisplay)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))
}

func TestMemberSportsFailedRefreshYieldsEmpty(t *testing.T) {
	var calls int32
	srv := memberSportsServer(t, func(w http.ResponseWriter, r *http.Request, _ memberSportsRequest) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	store := credential.NewStore(bootstrapKey)
	refresher := &stubRefresher{store: store}
	adapter := NewMemberSports(srv.Client(), srv.URL, store, refresher, zap.NewNop())

	slots, err := adapter.Fetch(context.Background(), lakeside, "2025-06-01")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAuthExpired))
	assert.True(t, errors.Is(err, apperrors.ErrUpstreamUnavailable))
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
	assert.Equal(t, bootstrapKey, store.Read())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))
}

func TestMemberSportsSecondRejectionDoesNotRecurse(t *testing.T) {
	var calls int32
	srv := memberSportsServer(t, func(w http.ResponseWriter, r *http.Request, _ memberSportsRequest) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	})

	store := credential.NewStore(bootstrapKey)
	refresher := &stubRefresher{store: store, next: rotatedKey}
	adapter := NewMemberSports(srv.Client(), srv.URL, store, refresher, zap.NewNop())

	slots, err := adapter.Fetch(context.Background(), lakeside, "2025-06-01")

	assert.ErrorIs(t, err, apperrors.ErrAuthExpired)
	assert.Empty(t, slots)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))
}

// Refresh against a real bundle scanner whose bundle has no key.
func TestMemberSportsRefreshWithoutUUIDKeepsCredential(t *testing.T) {
	app := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ngsw.json":
			w.Write([]byte(`{"assetGroups":[{"urls":["/main.0a1b2c.js"]}]}`))
		case "/main.0a1b2c.js":
			w.Write([]byte(`console.log("no key here")`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer app.Close()

	api := memberSportsServer(t, func(w http.ResponseWriter, r *http.Request, _ memberSportsRequest) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	store := credential.NewStore(bootstrapKey)
	scanner := credential.NewBundleScanner(app.Client(), app.URL, store, zap.NewNop(), nil)
	adapter := NewMemberSports(api.Client(), api.URL, store, scanner, zap.NewNop())

	slots, err := adapter.Fetch(context.Background(), lakeside, "2025-06-01")

	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	assert.Empty(t, slots)
	assert.Equal(t, bootstrapKey, store.Read())
}

func TestMemberSportsUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"not json", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html>maintenance</html>")) }},
		{"object instead of list", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"message":"error"}`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			adapter := NewMemberSports(srv.Client(), srv.URL, credential.NewStore(bootstrapKey), nil, zap.NewNop())
			slots, err := adapter.Fetch(context.Background(), lakeside, "2025-06-01")

			assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
			assert.NotNil(t, slots)
			assert.Empty(t, slots)
		})
	}
}
