package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wraps a timezone-aware cron runner. The stand-down entry is
// tracked separately so its time can be changed at runtime; the reminder and
// midnight entries are fixed for the process lifetime.
type Scheduler struct {
	cron   *cron.Cron
	loc    *time.Location
	logger *zap.Logger

	mu             sync.Mutex
	standdownEntry cron.EntryID
	standdownJob   func()
}

func New(loc *time.Location, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		loc:    loc,
		logger: logger,
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.String("timezone", s.loc.String()))
}

// Stop halts scheduling; already-running jobs finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Schedule registers a fixed cron entry.
func (s *Scheduler) Schedule(spec string, job func()) error {
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("failed to schedule %q: %w", spec, err)
	}
	return nil
}

func weekdaySpec(hour, minute int) string {
	return fmt.Sprintf("%d %d * * 1-5", minute, hour)
}

// ScheduleWeekday registers a fixed weekday entry at hour:minute.
func (s *Scheduler) ScheduleWeekday(hour, minute int, job func()) error {
	return s.Schedule(weekdaySpec(hour, minute), job)
}

// ScheduleStanddown registers the weekday stand-down job at hour:minute.
func (s *Scheduler) ScheduleStanddown(hour, minute int, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(weekdaySpec(hour, minute), job)
	if err != nil {
		return fmt.Errorf("failed to schedule stand-down: %w", err)
	}
	s.standdownEntry = id
	s.standdownJob = job
	return nil
}

// SetStanddownTime replaces the stand-down entry with a new weekday time and
// returns the next run.
func (s *Scheduler) SetStanddownTime(hour, minute int) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.standdownJob == nil {
		return time.Time{}, fmt.Errorf("stand-down job is not scheduled")
	}

	id, err := s.cron.AddFunc(weekdaySpec(hour, minute), s.standdownJob)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to reschedule stand-down: %w", err)
	}

	s.cron.Remove(s.standdownEntry)
	s.standdownEntry = id

	next := s.cron.Entry(id).Schedule.Next(time.Now().In(s.loc))
	s.logger.Info("Stand-down time updated",
		zap.Int("hour", hour),
		zap.Int("minute", minute),
		zap.Time("next_run", next))
	return next, nil
}

// ParseClock parses a strict 24-hour "HH:MM" string.
func ParseClock(value string) (hour, minute int, err error) {
	// time.Parse accepts single-digit hours; require the full HH:MM form.
	if len(value) != 5 {
		return 0, 0, fmt.Errorf("invalid time %q, expected 24-hour HH:MM", value)
	}
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected 24-hour HH:MM", value)
	}
	return t.Hour(), t.Minute(), nil
}
