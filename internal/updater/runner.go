// Package updater keeps a published card current: it owns the repeating
// render timer and the telemetry subscription that feeds it.
package updater

import (
	"context"
	"errors"
)

// Runner executes a single render-and-publish pass.
type Runner interface {
	RunOnce(context.Context) error
}

// ErrInvalidInterval is returned when the update interval is not positive.
var ErrInvalidInterval = errors.New("update interval must be positive")

// ErrAlreadyRunning is returned by Scheduler.Start while the scheduler is active.
var ErrAlreadyRunning = errors.New("scheduler is already running")
