package updater

import (
	"context"
	"strings"

	"github.com/pingcard/pingcard/internal/metrics"
)

type runContextKey int

const runContextKeyTrigger runContextKey = iota

// Render triggers recorded on the run context.
const (
	TriggerStart = metrics.TriggerStart
	TriggerTick  = metrics.TriggerTick
)

func WithTrigger(ctx context.Context, trigger string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	trigger = strings.ToLower(strings.TrimSpace(trigger))
	if trigger == "" {
		return ctx
	}
	return context.WithValue(ctx, runContextKeyTrigger, trigger)
}

// TriggerFromContext returns the trigger that started the run, defaulting to a tick.
func TriggerFromContext(ctx context.Context) string {
	if ctx == nil {
		return TriggerTick
	}
	v, ok := ctx.Value(runContextKeyTrigger).(string)
	if !ok || v == "" {
		return TriggerTick
	}
	return v
}
