package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"golfalerts/internal/catalog"
	"golfalerts/internal/entities"
	apperrors "golfalerts/internal/errors"
	"golfalerts/internal/utils"
)

// Facade dispatches acquisitions to the adapter registered for a course's
// provider. Results are always a usable slice; the error says why a slice
// is empty when the upstream failed rather than had no availability.
type Facade struct {
	catalog  *catalog.Catalog
	adapters map[catalog.Provider]Adapter
	logger   *zap.Logger
	ops      OpsReporter
	limit    int

	warned sync.Map
}

func NewFacade(cat *catalog.Catalog, logger *zap.Logger, ops OpsReporter, limit int, adapters ...Adapter) *Facade {
	if limit < 1 {
		limit = 1
	}
	registry := make(map[catalog.Provider]Adapter, len(adapters))
	for _, a := range adapters {
		registry[a.Provider()] = a
	}
	return &Facade{catalog: cat, adapters: registry, logger: logger, ops: ops, limit: limit}
}

func (f *Facade) Catalog() *catalog.Catalog {
	return f.catalog
}

func (f *Facade) Acquire(ctx context.Context, course catalog.Course, date string) (slots []entities.TeeTimeSlot, err error) {
	if _, perr := utils.ParseDate(date); perr != nil {
		return noSlots(), apperrors.NewValidationError(perr.Error())
	}

	adapter, ok := f.adapters[course.Provider]
	if !ok {
		f.flagUnsupported(ctx, course)
		return noSlots(), fmt.Errorf("course %q: %w: %s", course.Name, apperrors.ErrUnsupportedProvider, course.Provider)
	}

	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("adapter panicked", zap.String("provider", string(course.Provider)), zap.String("course", course.Name), zap.Any("panic", r))
			slots = noSlots()
			err = upstreamError(course.Provider, course, "adapter panic: %v", r)
		}
	}()

	slots, err = adapter.Fetch(ctx, course, date)
	if slots == nil {
		slots = noSlots()
	}
	if err != nil {
		f.logger.Warn("acquisition failed", zap.String("provider", string(course.Provider)), zap.String("course", course.Name), zap.String("date", date), zap.Error(err))
		return noSlots(), err
	}
	f.logger.Debug("acquired tee times", zap.String("provider", string(course.Provider)), zap.String("course", course.Name), zap.String("date", date), zap.Int("slots", len(slots)))
	return slots, nil
}

// AcquireAll queries every catalog course with bounded parallelism and
// returns the union ordered by time of day, then course name.
func (f *Facade) AcquireAll(ctx context.Context, date string) ([]entities.TeeTimeSlot, error) {
	courses := f.catalog.Courses()
	perCourse := make([][]entities.TeeTimeSlot, len(courses))
	errs := make([]error, len(courses))

	var g errgroup.Group
	g.SetLimit(f.limit)
	for i, course := range courses {
		g.Go(func() error {
			perCourse[i], errs[i] = f.Acquire(ctx, course, date)
			return nil
		})
	}
	_ = g.Wait()

	all := noSlots()
	for _, s := range perCourse {
		all = append(all, s...)
	}
	SortSlots(all)
	return all, errors.Join(errs...)
}

// SortSlots orders slots by (time of day, course name), stable for ties.
func SortSlots(slots []entities.TeeTimeSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].TimeMinutes != slots[j].TimeMinutes {
			return slots[i].TimeMinutes < slots[j].TimeMinutes
		}
		return slots[i].CourseName < slots[j].CourseName
	})
}

func (f *Facade) flagUnsupported(ctx context.Context, course catalog.Course) {
	f.logger.Warn("no adapter for provider, course hidden from results",
		zap.String("provider", string(course.Provider)), zap.String("course", course.Name))
	if _, seen := f.warned.LoadOrStore(course.Provider, true); seen || f.ops == nil {
		return
	}
	f.ops.NotifyOps(ctx, "Unsupported tee time provider",
		fmt.Sprintf("Catalog course %q uses provider %q which has no adapter; it will always show no availability.", course.Name, course.Provider))
}
