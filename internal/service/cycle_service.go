package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"golfalerts/internal/catalog"
	"golfalerts/internal/db"
	"golfalerts/internal/entities"
	apperrors "golfalerts/internal/errors"
	"golfalerts/internal/logging"
	"golfalerts/internal/utils"
)

// CycleService fires due alerts. A run loads every active, unfired alert
// dated today or later, checks current tee times and texts the owner once.
type CycleService struct {
	store    AlertStore
	catalog  *catalog.Catalog
	acquirer Acquirer
	sender   SMSSender
	logger   *zap.Logger
	loc      *time.Location
	now      func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewCycleService(store AlertStore, cat *catalog.Catalog, acquirer Acquirer, sender SMSSender, logger *zap.Logger, loc *time.Location) *CycleService {
	if loc == nil {
		loc = time.UTC
	}
	return &CycleService{
		store:    store,
		catalog:  cat,
		acquirer: acquirer,
		sender:   sender,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
}

type acquisition struct {
	slots []entities.TeeTimeSlot
	err   error
}

// RunCycleOnce processes all due alerts. Runs are serialized, so a caller
// arriving mid-run waits and then sees the rows the first run marked.
// Faults on one alert are logged and counted; the run always completes.
func (s *CycleService) RunCycleOnce(ctx context.Context) entities.CycleReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := entities.CycleReport{StartedAt: s.now().UTC()}
	today := s.now().In(s.loc).Format(time.DateOnly)

	alerts, err := s.store.ListDue(ctx, today)
	if err != nil {
		s.logger.Error("cycle: failed to load due alerts", zap.Error(err))
		report.Failed++
		report.FinishedAt = s.now().UTC()
		return report
	}

	// One acquisition per course and date per run.
	cache := make(map[string]acquisition)
	for _, alert := range alerts {
		if ctx.Err() != nil {
			s.logger.Warn("cycle: context done, stopping early", zap.Error(ctx.Err()))
			break
		}
		report.Checked++
		matched, notified, err := s.processAlert(ctx, alert, cache)
		if matched {
			report.Matched++
		}
		if notified {
			report.Notified++
		}
		if err != nil {
			report.Failed++
			s.logger.Warn("cycle: alert step failed", zap.Int("alert_id", alert.ID), zap.Error(err))
		}
	}

	report.FinishedAt = s.now().UTC()
	s.logger.Info("cycle finished",
		zap.Int("checked", report.Checked),
		zap.Int("matched", report.Matched),
		zap.Int("notified", report.Notified),
		zap.Int("failed", report.Failed),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
	return report
}

func (s *CycleService) processAlert(ctx context.Context, alert db.Alert, cache map[string]acquisition) (matched, notified bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	course, ok := s.catalog.Resolve(catalog.Provider(alert.Provider), alert.ClubID, alert.CourseName)
	if !ok {
		return false, false, fmt.Errorf("course %q (club %d) not in catalog", alert.CourseName, alert.ClubID)
	}

	key := fmt.Sprintf("%s|%d|%s|%s", course.Provider, course.ClubID, course.Name, alert.Date)
	acq, seen := cache[key]
	if !seen {
		acq.slots, acq.err = s.acquirer.Acquire(ctx, course, alert.Date)
		cache[key] = acq
	}
	if acq.err != nil {
		return false, false, fmt.Errorf("acquire %s: %w", course.Name, acq.err)
	}

	matches := MatchSlots(alert, acq.slots)
	if len(matches) == 0 {
		return false, false, nil
	}

	body := FormatAlertMessage(course, alert.Date, matches)
	if err := s.sender.Send(ctx, utils.E164(alert.Phone), body); err != nil {
		return true, false, fmt.Errorf("send: %w", err)
	}

	if err := s.store.MarkNotified(ctx, alert.ID, s.now().UTC()); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Already fired elsewhere; the text went out regardless.
			s.logger.Warn("cycle: alert was already marked notified", zap.Int("alert_id", alert.ID))
			return true, true, nil
		}
		return true, true, fmt.Errorf("mark notified: %w", err)
	}
	s.logger.Info("alert fired", zap.Int("alert_id", alert.ID), zap.String("course", course.Name), zap.Int("matches", len(matches)))
	return true, true, nil
}

type alertExpirer interface {
	PurgeBefore(ctx context.Context, today string) ([]int, error)
}

// ExpirePastAlerts deactivates unfired alerts dated before today when the
// store supports it.
func (s *CycleService) ExpirePastAlerts(ctx context.Context) (int, error) {
	e, ok := s.store.(alertExpirer)
	if !ok {
		return 0, nil
	}
	ids, err := e.PurgeBefore(ctx, s.now().In(s.loc).Format(time.DateOnly))
	if err != nil {
		return 0, fmt.Errorf("expire past alerts: %w", err)
	}
	if len(ids) > 0 {
		s.logger.Info("expired past alerts", zap.Ints("alert_ids", ids))
	}
	return len(ids), nil
}

// Start schedules RunCycleOnce every interval. Overlapping ticks are skipped.
func (s *CycleService) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("cycle interval must be positive, got %s", interval)
	}
	cronLogger := logging.CronLogger{Logger: s.logger}
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := c.AddFunc("@every "+interval.String(), func() {
		s.RunCycleOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule cycle: %w", err)
	}
	if _, err := c.AddFunc("@daily", func() {
		if _, err := s.ExpirePastAlerts(context.Background()); err != nil {
			s.logger.Error("failed to expire past alerts", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule expiry: %w", err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("alert cycle scheduled", zap.Duration("interval", interval))
	return nil
}

// Stop halts the schedule and waits for a running cycle to finish or ctx
// to expire.
func (s *CycleService) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("alert cycle still running at shutdown")
	}
}
