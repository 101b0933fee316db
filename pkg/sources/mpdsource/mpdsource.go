// Package mpdsource polls an MPD server for the current track and renders
// it through pkg/nowplaying. It owns the connection lifecycle: dial
// failures are retried after a short fixed delay, and any failed query
// drops the connection so the next poll reconnects from scratch. Query
// failure and connection loss are deliberately treated the same — the
// conservative reading of a broken response is a broken connection.
package mpdsource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fhs/gompd/v2/mpd"

	"gitlab.com/tinyland/lab/pulsebar/pkg/nowplaying"
)

const (
	// DefaultInterval is the query cadence while connected.
	DefaultInterval = 112 * time.Millisecond

	// DefaultRetryDelay is how long to wait before redialing after any
	// failure (dial or query).
	DefaultRetryDelay = time.Second

	// DefaultHost is used when no host is configured and MPD_HOST is unset.
	DefaultHost = "/run/mpd/socket"

	// Fallback is shown while the player cannot be queried.
	Fallback = nowplaying.NotPlaying
)

// multiValueSep separates repeated tag values in an MPD response attribute.
const multiValueSep = "; "

// queryClient is the slice of the MPD client used by this source. The
// concrete implementation is gompd's *mpd.Client; tests substitute a fake.
type queryClient interface {
	CurrentSong() (mpd.Attrs, error)
	Status() (mpd.Attrs, error)
	Close() error
}

// Config controls the MPD source.
type Config struct {
	// Host is the MPD target: a unix socket path when it starts with '/',
	// otherwise a TCP host:port. Empty means DefaultHost.
	Host string

	// Interval overrides DefaultInterval when positive.
	Interval time.Duration

	// RetryDelay overrides DefaultRetryDelay when positive.
	RetryDelay time.Duration

	// Fallback overrides the package fallback when non-empty.
	Fallback string
}

// Source polls MPD for now-playing state. It is driven by a single poller
// goroutine, so the connection field needs no locking.
type Source struct {
	cfg  Config
	dial func() (queryClient, error)
	conn queryClient
}

// New creates an MPD source. Zero-value fields in cfg are replaced with
// defaults.
func New(cfg Config) *Source {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Fallback == "" {
		cfg.Fallback = Fallback
	}

	network, addr := Target(cfg.Host)
	return &Source{
		cfg: cfg,
		dial: func() (queryClient, error) {
			return mpd.Dial(network, addr)
		},
	}
}

// Target maps an MPD_HOST-style host string to a Go network/address pair:
// a leading path separator selects a unix socket, anything else is TCP.
func Target(host string) (network, addr string) {
	if strings.HasPrefix(host, "/") {
		return "unix", host
	}
	return "tcp", host
}

// Name returns the source's unique identifier.
func (s *Source) Name() string { return "mpd" }

// Interval returns the query cadence while connected.
func (s *Source) Interval() time.Duration { return s.cfg.Interval }

// RetryDelay returns the redial delay used after a failed poll.
func (s *Source) RetryDelay() time.Duration { return s.cfg.RetryDelay }

// Fallback returns the placeholder segment.
func (s *Source) Fallback() string { return s.cfg.Fallback }

// Collect queries the current song and playback status, reconnecting first
// if the previous poll failed. The returned error makes the poller publish
// the fallback and retry after RetryDelay.
func (s *Source) Collect(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if s.conn == nil {
		conn, err := s.dial()
		if err != nil {
			return "", fmt.Errorf("mpd: connect %s: %w", s.cfg.Host, err)
		}
		s.conn = conn
	}

	song, err := s.conn.CurrentSong()
	if err != nil {
		s.drop()
		return "", fmt.Errorf("mpd: currentsong: %w", err)
	}
	if len(song) == 0 {
		// Queue is empty or playback never started.
		return nowplaying.NotPlaying, nil
	}

	status, err := s.conn.Status()
	if err != nil {
		s.drop()
		return "", fmt.Errorf("mpd: status: %w", err)
	}

	return nowplaying.Format(snapshot(song, status)), nil
}

// drop closes and forgets the connection so the next poll redials.
func (s *Source) drop() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// snapshot converts raw MPD response attributes into a formatter snapshot.
func snapshot(song, status mpd.Attrs) *nowplaying.Snapshot {
	snap := &nowplaying.Snapshot{
		Title:        song["Title"],
		Artists:      splitTag(song["Artist"]),
		AlbumArtists: splitTag(song["AlbumArtist"]),
	}

	if elapsed, ok := seconds(status["elapsed"]); ok {
		snap.Elapsed = elapsed
		snap.HasElapsed = true
		if duration, ok := seconds(status["duration"]); ok {
			snap.Duration = duration
		}
	}
	return snap
}

// splitTag splits an MPD multi-value tag. MPD joins repeated tags (multiple
// Artist entries) with "; " in a single attribute.
func splitTag(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, multiValueSep)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// seconds parses an MPD fractional-seconds attribute like "142.337".
func seconds(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return time.Duration(f * float64(time.Second)), true
}
