package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"screener-engine/internal/domain"
	"screener-engine/internal/usecase"
)

// CycleRunner runs one ranking cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (domain.RankingCycle, error)
}

// Scheduler triggers ranking cycles on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	runner  CycleRunner
	timeout time.Duration
	logger  *slog.Logger
	ctx     context.Context

	manual sync.WaitGroup
}

// New creates a scheduler. Every run is bounded by timeout and cancelled
// together with ctx.
func New(ctx context.Context, runner CycleRunner, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		runner:  runner,
		timeout: timeout,
		logger:  logger,
		ctx:     ctx,
	}
}

// Register adds the ranking task. expr uses the six-field cron format.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.cron.AddFunc(expr, s.RunNow); err != nil {
		return fmt.Errorf("register ranking task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "entries", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for scheduled and triggered cycles to
// finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.manual.Wait()
	s.logger.Info("scheduler stopped")
}

// Trigger runs one cycle in the background. Stop waits for it.
func (s *Scheduler) Trigger() {
	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		s.RunNow()
	}()
}

// RunNow executes one ranking cycle immediately.
func (s *Scheduler) RunNow() {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	_, err := s.runner.RunCycle(ctx)
	switch {
	case errors.Is(err, usecase.ErrCycleRunning):
		s.logger.Warn("skipping ranking cycle, previous one still running")
	case err != nil:
		s.logger.Error("ranking cycle failed", "error", err)
	}
}
