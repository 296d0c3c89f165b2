package updater

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pingcard/pingcard/internal/card"
	"github.com/pingcard/pingcard/internal/metrics"
	"github.com/pingcard/pingcard/internal/publish"
	"github.com/pingcard/pingcard/internal/telemetry"
)

const defaultPublishTimeout = 10 * time.Second

// CardRunner renders the held snapshot and hands the card to the publisher
// without waiting for the round trip.
type CardRunner struct {
	Store          *telemetry.Store
	Renderer       *card.Renderer
	Publisher      publish.Publisher
	Logger         *slog.Logger
	PublishTimeout time.Duration

	inflight sync.WaitGroup
}

func (r *CardRunner) RunOnce(ctx context.Context) error {
	if r == nil || r.Store == nil || r.Renderer == nil || r.Publisher == nil {
		return errors.New("card runner is not configured")
	}

	c, ok := r.Renderer.Render(r.Store.Current())
	if !ok {
		metrics.CardRendersSkippedTotal.Inc()
		r.logger().Debug("render skipped; no telemetry received yet")
		return nil
	}
	metrics.CardRendersTotal.WithLabelValues(TriggerFromContext(ctx)).Inc()

	// The publish outlives scheduler cancellation; only its own timeout bounds it.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.publishTimeout())
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		defer cancel()
		r.publish(pubCtx, c)
	}()
	return nil
}

// Wait blocks until every dispatched publish has returned.
func (r *CardRunner) Wait() {
	r.inflight.Wait()
}

func (r *CardRunner) publish(ctx context.Context, c card.Card) {
	start := time.Now()
	err := r.Publisher.Publish(ctx, c)
	metrics.CardPublishDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CardPublishesTotal.WithLabelValues("error").Inc()
		r.logger().Error("card publish failed", "title", c.Title, "err", err)
		return
	}
	metrics.CardPublishesTotal.WithLabelValues("success").Inc()
	metrics.CardLastPublishSuccessTimestamp.SetToCurrentTime()
	r.logger().Debug("card published", "title", c.Title, "duration", time.Since(start))
}

func (r *CardRunner) publishTimeout() time.Duration {
	if r.PublishTimeout > 0 {
		return r.PublishTimeout
	}
	return defaultPublishTimeout
}

func (r *CardRunner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
