// Package sources defines the interfaces and supervision loop for pulsebar
// data sources. Each source (mpdsource, volume, weather, sysload) implements
// the Source interface and is driven by its own Poller, which republishes the
// source's latest rendered segment through a Latest value consumed by the
// status line render loop.
package sources

import (
	"context"
	"time"
)

// Source is the interface all status segments implement. Implementations
// live in sub-packages (e.g., pkg/sources/volume) and are wired into an
// ordered poller list at startup.
type Source interface {
	// Name returns a unique identifier for this source (e.g., "volume").
	Name() string

	// Collect performs one poll cycle and returns the rendered segment text.
	// A non-nil error means the caller should show the fallback instead.
	Collect(ctx context.Context) (string, error)

	// Interval returns how long the poller sleeps between successful polls.
	Interval() time.Duration

	// Fallback returns the placeholder segment shown before the first
	// successful poll and whenever Collect fails.
	Fallback() string
}

// RetryDelayer is optionally implemented by sources whose failure cadence
// differs from their poll interval (e.g., mpdsource waits a short fixed
// delay before redialing a dead connection). The poller sleeps RetryDelay
// instead of Interval after a failed Collect.
type RetryDelayer interface {
	RetryDelay() time.Duration
}
