package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"golfalerts/internal/catalog"
	"golfalerts/internal/db"
	"golfalerts/internal/entities"
	apperrors "golfalerts/internal/errors"
	"golfalerts/internal/utils"
)

type AlertService struct {
	store    AlertStore
	catalog  *catalog.Catalog
	acquirer Acquirer
	logger   *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewAlertService(store AlertStore, cat *catalog.Catalog, acquirer Acquirer, logger *zap.Logger, loc *time.Location) *AlertService {
	if loc == nil {
		loc = time.UTC
	}
	return &AlertService{store: store, catalog: cat, acquirer: acquirer, logger: logger, loc: loc, now: time.Now}
}

// Create validates and stores a new alert. Rejections come back as
// *errors.ValidationError: a bad phone first, then malformed fields, then
// an identical active alert, then an alert whose window is already
// satisfied by current tee times.
func (s *AlertService) Create(ctx context.Context, req entities.CreateAlertRequest) (*entities.AlertResponse, error) {
	phone, err := utils.NormalizePhone(req.Phone)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid phone number: " + err.Error())
	}

	alert, course, err := s.buildAlert(phone, req)
	if err != nil {
		return nil, err
	}

	dup, err := s.store.FindDuplicate(ctx, alert)
	if err != nil {
		return nil, fmt.Errorf("check duplicate alert: %w", err)
	}
	if dup {
		return nil, apperrors.NewValidationError("an identical alert is already active")
	}

	slots, err := s.acquirer.Acquire(ctx, course, alert.Date)
	if err != nil {
		s.logger.Warn("could not check current availability, creating alert anyway",
			zap.String("course", course.Name), zap.String("date", alert.Date), zap.Error(err))
	}
	if matches := MatchSlots(alert, slots); len(matches) > 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"tee times are already available in that window: %s", strings.Join(displayTimes(matches, maxListedTimes), ", ")))
	}

	if err := s.store.Insert(ctx, &alert); err != nil {
		return nil, fmt.Errorf("insert alert: %w", err)
	}
	s.logger.Info("alert created", zap.Int("alert_id", alert.ID), zap.String("course", alert.CourseName), zap.String("date", alert.Date))

	resp := toAlertResponse(alert)
	return &resp, nil
}

func (s *AlertService) buildAlert(phone string, req entities.CreateAlertRequest) (db.Alert, catalog.Course, error) {
	day, err := utils.ParseDate(req.Date)
	if err != nil {
		return db.Alert{}, catalog.Course{}, apperrors.NewValidationError("date must be YYYY-MM-DD")
	}
	if day.Format(time.DateOnly) < s.today() {
		return db.Alert{}, catalog.Course{}, apperrors.NewValidationError("date is in the past")
	}

	course, ok := s.catalog.Resolve(catalog.Provider(req.Provider), req.ClubID, req.CourseName)
	if !ok {
		return db.Alert{}, catalog.Course{}, apperrors.NewValidationError(fmt.Sprintf("unknown course %d", req.ClubID))
	}

	if req.TimeStart < 0 || req.TimeEnd >= utils.MinutesPerDay || req.TimeStart > req.TimeEnd {
		return db.Alert{}, catalog.Course{}, apperrors.NewValidationError("time window must satisfy 0 <= time_start <= time_end <= 1439")
	}

	minSpots := req.MinSpots
	switch {
	case minSpots == 0:
		minSpots = 1
	case minSpots < 0 || minSpots > defaultPartySize:
		return db.Alert{}, catalog.Course{}, apperrors.NewValidationError(fmt.Sprintf("min_spots must be between 1 and %d", defaultPartySize))
	}

	return db.Alert{
		Phone:      phone,
		Provider:   string(course.Provider),
		ClubID:     course.ClubID,
		CourseName: course.Name,
		Date:       day.Format(time.DateOnly),
		TimeStart:  req.TimeStart,
		TimeEnd:    req.TimeEnd,
		MinSpots:   minSpots,
		Active:     true,
	}, course, nil
}

// List returns active alerts for a phone, or every active alert when
// phone is empty.
func (s *AlertService) List(ctx context.Context, phone string) ([]entities.AlertResponse, error) {
	if phone != "" {
		normalized, err := utils.NormalizePhone(phone)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid phone number: " + err.Error())
		}
		phone = normalized
	}

	alerts, err := s.store.ListByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	out := make([]entities.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}
	return out, nil
}

func (s *AlertService) Get(ctx context.Context, id int) (*entities.AlertResponse, error) {
	alert, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toAlertResponse(*alert)
	return &resp, nil
}

// Delete deactivates the alert; the row is kept.
func (s *AlertService) Delete(ctx context.Context, id int) error {
	if err := s.store.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info("alert deactivated", zap.Int("alert_id", id))
	return nil
}

func (s *AlertService) today() string {
	return s.now().In(s.loc).Format(time.DateOnly)
}

func toAlertResponse(a db.Alert) entities.AlertResponse {
	resp := entities.AlertResponse{
		ID:          a.ID,
		Phone:       a.Phone,
		Provider:    a.Provider,
		ClubID:      a.ClubID,
		CourseName:  a.CourseName,
		Date:        a.Date,
		TimeStart:   a.TimeStart,
		TimeEnd:     a.TimeEnd,
		WindowStart: utils.FormatMinutes(a.TimeStart),
		WindowEnd:   utils.FormatMinutes(a.TimeEnd),
		MinSpots:    a.MinSpots,
		Status:      string(a.Status()),
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
	if a.NotifiedAt != nil {
		resp.NotifiedAt = a.NotifiedAt.Format(time.RFC3339)
	}
	return resp
}
