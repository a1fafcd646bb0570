package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"golfalerts/internal/db"
	"golfalerts/internal/entities"
	apperrors "golfalerts/internal/errors"
)

func newTestAlertService(store *memStore, acq *fakeAcquirer) *AlertService {
	s := NewAlertService(store, testCatalog, acq, zap.NewNop(), nil)
	s.now = func() time.Time { return testNow }
	return s
}

func validRequest() entities.CreateAlertRequest {
	return entities.CreateAlertRequest{
		Phone:      "(303) 555-0142",
		Provider:   "membersports",
		ClubID:     100,
		CourseName: "Lakeside",
		Date:       "2025-06-01",
		TimeStart:  570,
		TimeEnd:    660,
		MinSpots:   2,
	}
}

func requireValidation(t *testing.T, err error) *apperrors.ValidationError {
	t.Helper()
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr
}

func TestCreateAlertStoresNormalizedPhone(t *testing.T) {
	store := newMemStore()
	svc := newTestAlertService(store, newFakeAcquirer())

	resp, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.ID)
	assert.Equal(t, "3035550142", resp.Phone)
	assert.Equal(t, "Lakeside", resp.CourseName)
	assert.Equal(t, "9:30 AM", resp.WindowStart)
	assert.Equal(t, "11:00 AM", resp.WindowEnd)
	assert.Equal(t, "active", resp.Status)
	assert.Len(t, store.alerts, 1)
}

func TestCreateAlertResolvesSiblingCourseByName(t *testing.T) {
	store := newMemStore()
	svc := newTestAlertService(store, newFakeAcquirer())

	req := validRequest()
	req.CourseName = "lakeside par 3"
	resp, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Lakeside Par 3", resp.CourseName)
}

func TestCreateAlertRejectsBadPhoneFirst(t *testing.T) {
	store := newMemStore()
	svc := newTestAlertService(store, newFakeAcquirer())

	req := validRequest()
	req.Phone = "555-0142"
	req.Date = "garbage"

	_, err := svc.Create(context.Background(), req)
	verr := requireValidation(t, err)
	assert.Contains(t, verr.Reason, "phone")
	assert.Empty(t, store.alerts)
}

func TestCreateAlertFieldValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entities.CreateAlertRequest)
		reason string
	}{
		{"bad date", func(r *entities.CreateAlertRequest) { r.Date = "06/01/2025" }, "date"},
		{"past date", func(r *entities.CreateAlertRequest) { r.Date = "2025-05-01" }, "past"},
		{"unknown club", func(r *entities.CreateAlertRequest) { r.ClubID = 999 }, "unknown course"},
		{"inverted window", func(r *entities.CreateAlertRequest) { r.TimeStart, r.TimeEnd = 700, 600 }, "time window"},
		{"window past midnight", func(r *entities.CreateAlertRequest) { r.TimeEnd = 1440 }, "time window"},
		{"negative spots", func(r *entities.CreateAlertRequest) { r.MinSpots = -1 }, "min_spots"},
		{"too many spots", func(r *entities.CreateAlertRequest) { r.MinSpots = 5 }, "min_spots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := newTestAlertService(store, newFakeAcquirer())
			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Create(context.Background(), req)
			verr := requireValidation(t, err)
			assert.Contains(t, verr.Reason, tt.reason)
			assert.Empty(t, store.alerts)
		})
	}
}

func TestCreateAlertDefaultsMinSpots(t *testing.T) {
	svc := newTestAlertService(newMemStore(), newFakeAcquirer())
	req := validRequest()
	req.MinSpots = 0

	resp, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.MinSpots)
}

func TestCreateAlertRejectsDuplicate(t *testing.T) {
	store := newMemStore()
	svc := newTestAlertService(store, newFakeAcquirer())

	_, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Phone = "303.555.0142"
	_, err = svc.Create(context.Background(), req)
	verr := requireValidation(t, err)
	assert.Contains(t, verr.Reason, "already active")
	assert.Len(t, store.alerts, 1)

	// Once the first is deleted the same alert may be created again.
	require.NoError(t, svc.Delete(context.Background(), 1))
	_, err = svc.Create(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateAlertRejectsAlreadySatisfied(t *testing.T) {
	store := newMemStore()
	acq := newFakeAcquirer()
	acq.slots["Lakeside"] = []entities.TeeTimeSlot{slot(lakeside, 600, 2)}
	svc := newTestAlertService(store, acq)

	_, err := svc.Create(context.Background(), validRequest())
	verr := requireValidation(t, err)
	assert.Contains(t, verr.Reason, "already available")
	assert.Contains(t, verr.Reason, "10:00 AM")
	assert.Empty(t, store.alerts)
}

func TestCreateAlertNotSatisfiedByTooFewSpots(t *testing.T) {
	acq := newFakeAcquirer()
	acq.slots["Lakeside"] = []entities.TeeTimeSlot{slot(lakeside, 600, 1)}
	svc := newTestAlertService(newMemStore(), acq)

	_, err := svc.Create(context.Background(), validRequest())
	assert.NoError(t, err)
}

func TestCreateAlertProceedsWhenUpstreamDown(t *testing.T) {
	store := newMemStore()
	acq := newFakeAcquirer()
	acq.errs["Lakeside"] = apperrors.ErrUpstreamUnavailable
	svc := newTestAlertService(store, acq)

	_, err := svc.Create(context.Background(), validRequest())
	assert.NoError(t, err)
	assert.Len(t, store.alerts, 1)
}

func TestListAlerts(t *testing.T) {
	store := newMemStore(
		db.Alert{Phone: "3035550142", CourseName: "Lakeside", Active: true},
		db.Alert{Phone: "3035550142", CourseName: "Hillview", Active: false},
		db.Alert{Phone: "7205550199", CourseName: "Lakeside", Active: true},
	)
	svc := newTestAlertService(store, newFakeAcquirer())

	mine, err := svc.List(context.Background(), "303-555-0142")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Lakeside", mine[0].CourseName)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.List(context.Background(), "12")
	requireValidation(t, err)
}

func TestGetAndDeleteUnknownAlert(t *testing.T) {
	svc := newTestAlertService(newMemStore(), newFakeAcquirer())

	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), 42), apperrors.ErrNotFound)
}

func TestDeleteKeepsRow(t *testing.T) {
	store := newMemStore(db.Alert{Phone: "3035550142", Active: true})
	svc := newTestAlertService(store, newFakeAcquirer())

	require.NoError(t, svc.Delete(context.Background(), 1))
	resp, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "deactivated", resp.Status)
}
