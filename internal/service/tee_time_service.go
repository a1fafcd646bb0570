package service

import (
	"context"
	"fmt"

	"golfalerts/internal/catalog"
	"golfalerts/internal/entities"
	apperrors "golfalerts/internal/errors"
	"golfalerts/internal/utils"
)

// FanoutAcquirer is an Acquirer that can also query the whole catalog.
type FanoutAcquirer interface {
	Acquirer
	AcquireAll(ctx context.Context, date string) ([]entities.TeeTimeSlot, error)
}

// TeeTimeService answers on-demand availability queries. A nil error with
// degraded=true means some upstream failed and its courses are missing.
type TeeTimeService struct {
	catalog  *catalog.Catalog
	acquirer FanoutAcquirer
}

func NewTeeTimeService(cat *catalog.Catalog, acquirer FanoutAcquirer) *TeeTimeService {
	return &TeeTimeService{catalog: cat, acquirer: acquirer}
}

func (s *TeeTimeService) ListCourses() []catalog.Course {
	return s.catalog.Courses()
}

func (s *TeeTimeService) GetTeeTimes(ctx context.Context, provider catalog.Provider, clubID, courseID int, date string) (slots []entities.TeeTimeSlot, degraded bool, err error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, false, apperrors.NewValidationError("date must be YYYY-MM-DD")
	}
	course, ok := s.catalog.Lookup(provider, clubID, courseID)
	if !ok {
		return nil, false, fmt.Errorf("course %s/%d/%d: %w", provider, clubID, courseID, apperrors.ErrNotFound)
	}
	slots, err = s.acquirer.Acquire(ctx, course, date)
	if err != nil {
		return slots, true, nil
	}
	return slots, false, nil
}

func (s *TeeTimeService) GetAllTeeTimes(ctx context.Context, date string) (slots []entities.TeeTimeSlot, degraded bool, err error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, false, apperrors.NewValidationError("date must be YYYY-MM-DD")
	}
	slots, err = s.acquirer.AcquireAll(ctx, date)
	return slots, err != nil, nil
}
