package sources

import "sync/atomic"

// Latest is a single-slot, overwrite-on-publish broadcast cell. Publish
// replaces the current value; Load returns it. Neither ever blocks, so a
// slow reader can never apply backpressure to a publisher and a publisher
// can never stall the render loop. There is no history: values published
// between two loads are simply never observed.
//
// Exactly one poller writes each Latest; any number of readers may call
// Load concurrently without coordination.
type Latest struct {
	v atomic.Value
}

// NewLatest returns a Latest seeded with the given fallback text, so reads
// that happen before the first publish still produce a usable segment.
func NewLatest(fallback string) *Latest {
	l := &Latest{}
	l.v.Store(fallback)
	return l
}

// Publish stores text as the current value, replacing whatever was there.
func (l *Latest) Publish(text string) {
	l.v.Store(text)
}

// Load returns the most recently published value.
func (l *Latest) Load() string {
	return l.v.Load().(string)
}
