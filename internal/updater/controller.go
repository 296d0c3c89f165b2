package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pingcard/pingcard/internal/card"
	"github.com/pingcard/pingcard/internal/logging"
	"github.com/pingcard/pingcard/internal/publish"
	"github.com/pingcard/pingcard/internal/telemetry"
)

type Options struct {
	Interval       time.Duration
	PublishTimeout time.Duration
	Renderer       *card.Renderer
	Logger         *slog.Logger
	// NewTicker overrides the scheduler's tick source.
	NewTicker func(time.Duration) (<-chan time.Time, func())
}

// Controller wires the telemetry source, the snapshot store, the scheduler
// and the publisher together for one published card.
type Controller struct {
	source    telemetry.Source
	publisher publish.Publisher
	store     *telemetry.Store
	runner    *CardRunner
	scheduler *Scheduler
	logger    *slog.Logger

	mu          sync.Mutex
	active      bool
	unsubscribe func()
}

func NewController(source telemetry.Source, publisher publish.Publisher, opts Options) (*Controller, error) {
	if source == nil {
		return nil, errors.New("telemetry source is nil")
	}
	if publisher == nil {
		return nil, errors.New("card publisher is nil")
	}
	if opts.Interval <= 0 {
		return nil, ErrInvalidInterval
	}

	logger := logging.Component(opts.Logger, logging.ComponentUpdater)

	renderer := opts.Renderer
	if renderer == nil {
		renderer = card.NewRenderer(time.Local)
	}
	store := telemetry.NewStore()
	runner := &CardRunner{
		Store:          store,
		Renderer:       renderer,
		Publisher:      publisher,
		Logger:         logger,
		PublishTimeout: opts.PublishTimeout,
	}
	return &Controller{
		source:    source,
		publisher: publisher,
		store:     store,
		runner:    runner,
		scheduler: &Scheduler{
			Runner:    runner,
			Interval:  opts.Interval,
			Logger:    logger,
			NewTicker: opts.NewTicker,
		},
		logger: logger,
	}, nil
}

// Start syncs the publisher, subscribes to telemetry, renders once and arms
// the timer. Starting an active controller does nothing.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return nil
	}

	if err := c.publisher.Sync(ctx); err != nil {
		return fmt.Errorf("sync publisher: %w", err)
	}
	// Subscribe first so no event is lost between the initial render and the first tick.
	unsubscribe := c.source.Subscribe(c.ingest)
	if err := c.scheduler.Start(ctx); err != nil {
		unsubscribe()
		return fmt.Errorf("start scheduler: %w", err)
	}
	c.unsubscribe = unsubscribe
	c.active = true
	c.logger.Info("card updater started", "interval", c.scheduler.Interval)
	return nil
}

// Stop tears down the timer and the subscription and discards the held
// snapshot. Publishes already dispatched are left to finish.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.scheduler.Stop()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.store.Reset()
	c.active = false
	c.logger.Info("card updater stopped")
}

func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Wait blocks until in-flight publishes finish.
func (c *Controller) Wait() {
	c.runner.Wait()
}

func (c *Controller) Store() *telemetry.Store {
	return c.store
}

func (c *Controller) ingest(snap *telemetry.Snapshot) {
	c.store.Ingest(snap)
}
