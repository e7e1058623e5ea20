// Package scheduler runs the periodic ledger archive.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrJobNotFound is returned for unknown schedule names.
var ErrJobNotFound = errors.New("job not found")

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job is the work run on every tick of a schedule
type Job func(ctx context.Context) error

// Schedule describes when a job runs
type Schedule struct {
	Name           string        `json:"name"`
	CronExpression string        `json:"cron_expression"`
	Timezone       string        `json:"timezone"`
	Timeout        time.Duration `json:"timeout"`
}

// JobStatus represents the status of a scheduled job
type JobStatus struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
	PrevRun time.Time `json:"prev_run"`
}

// ScheduleManager runs named jobs on cron schedules
type ScheduleManager struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	logger  *zap.Logger
	mu      sync.RWMutex
	running bool
}

// NewScheduleManager creates a new schedule manager
func NewScheduleManager(logger *zap.Logger) *ScheduleManager {
	return &ScheduleManager{
		cron:   cron.New(cron.WithParser(cronParser)),
		jobs:   make(map[string]cron.EntryID),
		logger: logger,
	}
}

// Start starts the schedule manager
func (m *ScheduleManager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("schedule manager already running")
	}
	m.running = true

	m.logger.Info("Starting schedule manager", zap.Int("jobs", len(m.jobs)))
	m.cron.Start()
	return nil
}

// Stop stops the schedule manager and waits for running jobs
func (m *ScheduleManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	m.logger.Info("Stopping schedule manager")
	ctx := m.cron.Stop()
	<-ctx.Done()

	m.running = false
}

// AddSchedule registers job under schedule.Name, replacing any previous job
// with that name. Unknown timezones fall back to UTC.
func (m *ScheduleManager) AddSchedule(schedule Schedule, job Job) error {
	if err := ValidateCronExpression(schedule.CronExpression); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule.CronExpression, err)
	}

	loc, err := time.LoadLocation(schedule.Timezone)
	if err != nil {
		loc = time.UTC
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if entryID, ok := m.jobs[schedule.Name]; ok {
		m.cron.Remove(entryID)
	}

	expr := fmt.Sprintf("CRON_TZ=%s %s", loc.String(), schedule.CronExpression)
	entryID, err := m.cron.AddFunc(expr, func() {
		m.run(schedule, job)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	m.jobs[schedule.Name] = entryID

	m.logger.Info("Added schedule",
		zap.String("name", schedule.Name),
		zap.String("cron", schedule.CronExpression),
		zap.String("timezone", loc.String()))
	return nil
}

func (m *ScheduleManager) run(schedule Schedule, job Job) {
	ctx := context.Background()
	if schedule.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, schedule.Timeout)
		defer cancel()
	}

	m.logger.Info("Executing scheduled job", zap.String("name", schedule.Name))
	if err := job(ctx); err != nil {
		m.logger.Error("Scheduled job failed", zap.String("name", schedule.Name), zap.Error(err))
		return
	}
	m.logger.Info("Scheduled job completed", zap.String("name", schedule.Name))
}

// RemoveSchedule removes a schedule from the manager
func (m *ScheduleManager) RemoveSchedule(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entryID, ok := m.jobs[name]; ok {
		m.cron.Remove(entryID)
		delete(m.jobs, name)

		m.logger.Info("Removed schedule", zap.String("name", name))
	}
}

// GetActiveJobs returns the number of active jobs
func (m *ScheduleManager) GetActiveJobs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.jobs)
}

// GetJobStatus returns the status of a scheduled job. NextRun is only set
// once the manager is running.
func (m *ScheduleManager) GetJobStatus(name string) (*JobStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entryID, ok := m.jobs[name]
	if !ok {
		return nil, ErrJobNotFound
	}

	entry := m.cron.Entry(entryID)
	return &JobStatus{
		Name:    name,
		NextRun: entry.Next,
		PrevRun: entry.Prev,
	}, nil
}

// NextExecution returns the first activation of cronExpr after from, in the
// given timezone.
func NextExecution(cronExpr, timezone string, from time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Next(from.In(loc)), nil
}

// ValidateCronExpression validates a five-field cron expression
func ValidateCronExpression(expr string) error {
	_, err := cronParser.Parse(expr)
	return err
}

// DescribeCronExpression returns a human-readable description of a cron expression
func DescribeCronExpression(expr string) string {
	switch expr {
	case "0 * * * *":
		return "Every hour"
	case "0 0 * * *":
		return "Every day at midnight"
	case "0 0 * * 0":
		return "Every Sunday at midnight"
	case "0 0 1 * *":
		return "First day of every month at midnight"
	case "0 3 1 * *":
		return "First day of every month at 03:00"
	case "0 9 * * 1-5":
		return "Every weekday at 9:00 AM"
	default:
		return expr
	}
}
