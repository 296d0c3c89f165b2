package updater

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs its Runner once at start and then on every Interval tick
// until stopped. Runs never overlap.
type Scheduler struct {
	Runner   Runner
	Interval time.Duration
	Logger   *slog.Logger

	// NewTicker overrides the tick source; nil uses time.NewTicker.
	NewTicker func(time.Duration) (<-chan time.Time, func())

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Start performs the initial run synchronously and arms the ticker.
// Stopping the scheduler or cancelling ctx ends the tick loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.Runner == nil {
		return errors.New("scheduler runner is nil")
	}
	if s.Interval <= 0 {
		return ErrInvalidInterval
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	// Run immediately at startup.
	s.runOnce(runCtx, TriggerStart)

	ticks, stopTicker := s.ticker()
	go func() {
		defer close(done)
		defer stopTicker()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticks:
				if runCtx.Err() != nil {
					return
				}
				s.runOnce(runCtx, TriggerTick)
			}
		}
	}()
	return nil
}

// Stop cancels the ticker and waits for a running pass to return. It is safe
// to call more than once. It must not be called from inside Runner.RunOnce.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) runOnce(ctx context.Context, trigger string) {
	if err := s.Runner.RunOnce(WithTrigger(ctx, trigger)); err != nil {
		msg := "scheduled render failed"
		if trigger == TriggerStart {
			msg = "initial render failed"
		}
		s.logger().Error(msg, "err", err)
	}
}

func (s *Scheduler) ticker() (<-chan time.Time, func()) {
	if s.NewTicker != nil {
		return s.NewTicker(s.Interval)
	}
	t := time.NewTicker(s.Interval)
	return t.C, t.Stop
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
