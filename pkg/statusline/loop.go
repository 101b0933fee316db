package statusline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/pulsebar/pkg/sources"
)

// DefaultTick is the master render cadence. Every tick re-reads each
// poller's latest value and emits one composite line.
const DefaultTick = 100 * time.Millisecond

// Loop assembles and streams the composite status line. It reads each
// poller's Latest without blocking — pollers can be arbitrarily slow, dead,
// or failing and the loop still ticks on schedule with whatever is current.
type Loop struct {
	pollers []*sources.Poller
	tick    time.Duration
	plain   bool

	// now is swappable for deterministic tests.
	now func() time.Time
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithTick overrides DefaultTick.
func WithTick(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.tick = d
		}
	}
}

// WithPlainOutput emits bare composite lines instead of the JSON protocol.
// Useful when stdout is a terminal rather than a bar.
func WithPlainOutput() LoopOption {
	return func(l *Loop) { l.plain = true }
}

// withNow overrides the clock (tests only).
func withNow(now func() time.Time) LoopOption {
	return func(l *Loop) { l.now = now }
}

// NewLoop creates a render loop over the given pollers. Poller order is
// segment order in the composite line.
func NewLoop(pollers []*sources.Poller, opts ...LoopOption) *Loop {
	l := &Loop{
		pollers: pollers,
		tick:    DefaultTick,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run streams status lines to w until ctx is cancelled. In protocol mode
// it first emits the given header and the opening bracket; the array is
// intentionally never closed. Run returns ctx.Err() on cancellation, or
// the first write error (a broken pipe means the bar is gone and there is
// nobody left to render for).
func (l *Loop) Run(ctx context.Context, w io.Writer, header Header) error {
	pw := NewWriter(w)

	if !l.plain {
		if err := pw.WriteHeader(header); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	for {
		text := l.Composite(l.now())

		var err error
		if l.plain {
			_, err = fmt.Fprintln(w, text)
		} else {
			err = pw.WriteStatus(text)
		}
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Composite builds one tick's full text: each poller's latest value in
// declared order, each followed by a single space, then the timestamp.
func (l *Loop) Composite(now time.Time) string {
	var b strings.Builder
	for _, p := range l.pollers {
		b.WriteString(p.Latest())
		b.WriteByte(' ')
	}
	b.WriteString(now.Format(TimestampLayout))
	return b.String()
}
