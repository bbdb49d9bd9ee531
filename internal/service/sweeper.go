package service

import (
	"fmt"
	"time"

	"mgacha-dashboard/internal/logger"

	"github.com/go-co-op/gocron/v2"
)

// SweepConfig holds configuration for the idle-session sweeper.
type SweepConfig struct {
	// IdleTTL is how long a session may go unused before it is dropped.
	// Default: 30 minutes
	IdleTTL time.Duration

	// Interval is how often the sweep runs.
	// Default: 5 minutes
	Interval time.Duration
}

// SessionSweeper periodically drops idle dashboard sessions.
type SessionSweeper struct {
	manager   *SessionManager
	config    SweepConfig
	scheduler gocron.Scheduler
}

// NewSessionSweeper creates a sweeper for manager. Call Start to schedule it.
func NewSessionSweeper(manager *SessionManager, config SweepConfig) (*SessionSweeper, error) {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 30 * time.Minute
	}
	if config.Interval <= 0 {
		config.Interval = 5 * time.Minute
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &SessionSweeper{
		manager:   manager,
		config:    config,
		scheduler: sched,
	}, nil
}

// Start schedules the sweep job.
func (s *SessionSweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.config.Interval),
		gocron.NewTask(func() { s.RunNow() }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	s.scheduler.Start()
	logger.Log.Infof("[SessionSweeper] Started - Interval: %v, IdleTTL: %v", s.config.Interval, s.config.IdleTTL)
	return nil
}

// RunNow sweeps immediately and returns the number of sessions dropped.
func (s *SessionSweeper) RunNow() int {
	removed := s.manager.Sweep(s.config.IdleTTL)
	if removed > 0 {
		logger.Log.Infof("[SessionSweeper] Dropped %d idle sessions, %d remain", removed, s.manager.Count())
	}
	return removed
}

// Stop shuts the scheduler down.
func (s *SessionSweeper) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return err
	}
	logger.Log.Info("[SessionSweeper] Stopped")
	return nil
}
