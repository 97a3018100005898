package scheduler

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type ScheduleType string

const (
	Once        ScheduleType = "once"
	Recurring   ScheduleType = "recurring"
	Cron        ScheduleType = "cron"
	MarketHours ScheduleType = "market_hours"
)

// market-hours schedules fire on a short fixed cadence inside the
// trading window rather than on a cron expression
const marketHoursInterval = 5 * time.Minute

/**
 * Schedule decides when a pipeline should next fire. It carries no
 * execution capability: a driver loop polls DueSchedules, triggers
 * the engine itself and reports back through UpdateNextRun.
 */
type Schedule struct {
	ID              string        `json:"id" validate:"required"`
	PipelineID      string        `json:"pipeline_id" validate:"required"`
	Type            ScheduleType  `json:"type" validate:"required,oneof=once recurring cron market_hours"`
	Interval        time.Duration `json:"interval,omitempty"`
	CronExpr        string        `json:"cron_expr,omitempty"`
	MarketHoursOnly bool          `json:"market_hours_only,omitempty"`
	Enabled         bool          `json:"enabled"`
	NextRun         *time.Time    `json:"next_run,omitempty"`
	LastRun         *time.Time    `json:"last_run,omitempty"`
}

// standard 5-field cron format (minute hour dom month dow)
func cronParser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
}

/**
 * Scheduler is a passive schedule registry. It performs no I/O and
 * owns no goroutine; all timing decisions take the caller's clock so
 * behavior is reproducible.
 */
type Scheduler struct {
	mu sync.Mutex

	validate  *validator.Validate
	schedules map[string]*Schedule
}

func New() *Scheduler {
	return &Scheduler{
		validate:  validator.New(),
		schedules: make(map[string]*Schedule),
	}
}

/**
 * AddSchedule registers a schedule and, unless the caller preset
 * NextRun, computes the first firing time from now. Cron expressions
 * are parsed eagerly so a bad expression fails at registration, not
 * at poll time.
 */
func (s *Scheduler) AddSchedule(schedule *Schedule) error {
	if schedule == nil {
		return errors.BadRequestf("schedule is nil")
	}
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if err := s.validate.Struct(schedule); err != nil {
		return errors.Annotatef(err, "invalid schedule %s", schedule.ID)
	}

	switch schedule.Type {
	case Recurring:
		if schedule.Interval <= 0 {
			return errors.BadRequestf("recurring schedule %s requires an interval", schedule.ID)
		}
	case Cron:
		if _, err := cronParser().Parse(schedule.CronExpr); err != nil {
			return errors.Annotatef(err, "schedule %s has a bad cron expression", schedule.ID)
		}
	case MarketHours:
		schedule.MarketHoursOnly = true
		if schedule.Interval <= 0 {
			schedule.Interval = marketHoursInterval
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schedules[schedule.ID]; exists {
		return errors.AlreadyExistsf("schedule: %s", schedule.ID)
	}

	schedule.Enabled = true
	if schedule.NextRun == nil {
		next := s.nextFiring(schedule, time.Now())
		schedule.NextRun = &next
	}
	s.schedules[schedule.ID] = schedule
	log.Debugf("schedule %s: pipeline %s, type %s, next %v",
		schedule.ID, schedule.PipelineID, schedule.Type, schedule.NextRun)
	return nil
}

func (s *Scheduler) RemoveSchedule(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schedules[id]; !exists {
		return errors.NotFoundf("schedule: %s", id)
	}
	delete(s.schedules, id)
	return nil
}

func (s *Scheduler) EnableSchedule(id string) error {
	return s.setEnabled(id, true)
}

func (s *Scheduler) DisableSchedule(id string) error {
	return s.setEnabled(id, false)
}

func (s *Scheduler) setEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule, exists := s.schedules[id]
	if !exists {
		return errors.NotFoundf("schedule: %s", id)
	}
	schedule.Enabled = enabled
	return nil
}

func (s *Scheduler) Schedule(id string) (*Schedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule, exists := s.schedules[id]
	return schedule, exists
}

/**
 * DueSchedules returns every enabled schedule whose NextRun has
 * arrived, excluding market-hours-gated schedules when now falls
 * outside the trading window.
 */
func (s *Scheduler) DueSchedules(now time.Time) []*Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*Schedule, 0)
	for _, schedule := range s.schedules {
		if !schedule.Enabled || schedule.NextRun == nil {
			continue
		}
		if schedule.NextRun.After(now) {
			continue
		}
		if schedule.MarketHoursOnly && !WithinMarketHours(now) {
			continue
		}
		due = append(due, schedule)
	}
	return due
}

/**
 * UpdateNextRun is the driver's acknowledgement that a due schedule
 * was triggered: it stamps LastRun and advances NextRun by type.
 * A one-shot schedule is consumed — NextRun cleared and disabled.
 */
func (s *Scheduler) UpdateNextRun(id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule, exists := s.schedules[id]
	if !exists {
		return errors.NotFoundf("schedule: %s", id)
	}

	stamp := now
	schedule.LastRun = &stamp

	if schedule.Type == Once {
		schedule.NextRun = nil
		schedule.Enabled = false
		log.Debugf("schedule %s: one-shot consumed", id)
		return nil
	}

	next := s.nextFiring(schedule, now)
	schedule.NextRun = &next
	return nil
}

func (s *Scheduler) nextFiring(schedule *Schedule, now time.Time) time.Time {
	switch schedule.Type {
	case Cron:
		// expression validity was checked at registration
		if expr, err := cronParser().Parse(schedule.CronExpr); err == nil {
			return expr.Next(now)
		}
		return now.Add(time.Minute)
	case MarketHours:
		return now.Add(schedule.Interval)
	default:
		return now.Add(schedule.Interval)
	}
}
