package sources

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Poller supervises one Source: it polls forever, publishing each rendered
// segment (or the source's fallback on failure) into its own Latest. A
// failing source is routine, not exceptional — headless audio, no network —
// so there is no backoff and no circuit breaking; the source keeps being
// polled at full frequency and keeps showing its fallback until it recovers.
//
// The poller is the sole writer of its Latest. Failures never cross poller
// boundaries: an adapter error is logged and converted to fallback text,
// and the render loop keeps reading whatever is current.
type Poller struct {
	source Source
	latest *Latest
	logger *slog.Logger

	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPoller creates a poller for src. The Latest is seeded with the
// source's fallback so the render loop has something to show immediately.
// A nil logger discards diagnostics.
func NewPoller(src Source, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Poller{
		source: src,
		latest: NewLatest(src.Fallback()),
		logger: logger,
	}
}

// Source returns the supervised source.
func (p *Poller) Source() Source {
	return p.source
}

// Latest returns the most recently published segment text. It never blocks.
func (p *Poller) Latest() string {
	return p.latest.Load()
}

// Start launches the supervision goroutine. It returns immediately; the
// goroutine runs until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(ctx)
	}()
}

// Stop blocks until the supervision goroutine has exited. It does not
// cancel the context; callers cancel and then Stop. Stop is idempotent.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.wg.Wait()
	})
}

// run is the supervision loop: collect, publish, sleep, repeat. The first
// collection happens immediately on start, not after the first interval.
func (p *Poller) run(ctx context.Context) {
	name := p.source.Name()
	for {
		delay := p.source.Interval()

		text, err := p.source.Collect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.latest.Publish(p.source.Fallback())
			p.logger.Warn("collect failed", "source", name, "error", err)
			if rd, ok := p.source.(RetryDelayer); ok {
				delay = rd.RetryDelay()
			}
		} else {
			p.latest.Publish(text)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
