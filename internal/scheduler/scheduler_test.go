package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screener-engine/internal/domain"
)

type countingRunner struct {
	calls    atomic.Int32
	err      error
	deadline atomic.Bool
}

func (r *countingRunner) RunCycle(ctx context.Context) (domain.RankingCycle, error) {
	r.calls.Add(1)
	_, ok := ctx.Deadline()
	r.deadline.Store(ok)
	return domain.RankingCycle{}, r.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegisterRejectsInvalidSpec(t *testing.T) {
	s := New(context.Background(), &countingRunner{}, 0, testLogger())
	assert.Error(t, s.Register("every fifteen minutes"))
	assert.Error(t, s.Register("*/15 * * * *"), "five-field specs lack seconds")
	assert.NoError(t, s.Register("0 */15 * * * *"))
}

func TestRunNowAppliesTimeout(t *testing.T) {
	runner := &countingRunner{err: errors.New("upstream down")}
	s := New(context.Background(), runner, time.Minute, testLogger())

	s.RunNow()
	assert.EqualValues(t, 1, runner.calls.Load())
	assert.True(t, runner.deadline.Load())
}

func TestScheduledRun(t *testing.T) {
	runner := &countingRunner{}
	s := New(context.Background(), runner, 0, testLogger())
	require.NoError(t, s.Register("* * * * * *"))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return runner.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

type blockingRunner struct {
	started chan struct{}
	release chan struct{}
	done    atomic.Bool
}

func (r *blockingRunner) RunCycle(ctx context.Context) (domain.RankingCycle, error) {
	close(r.started)
	<-r.release
	r.done.Store(true)
	return domain.RankingCycle{}, nil
}

func TestStopWaitsForTriggeredRun(t *testing.T) {
	runner := &blockingRunner{started: make(chan struct{}), release: make(chan struct{})}
	s := New(context.Background(), runner, 0, testLogger())
	s.Start()
	s.Trigger()
	<-runner.started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a cycle was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(runner.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.True(t, runner.done.Load())
}
