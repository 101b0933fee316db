// Package volume polls the default PipeWire sink through wpctl and renders
// a mute-aware volume percentage segment.
package volume

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultInterval is the poll cadence after a successful query.
	DefaultInterval = 323 * time.Millisecond

	// DefaultRetryDelay is the poll cadence while wpctl keeps failing
	// (missing binary, no audio server).
	DefaultRetryDelay = time.Second

	// Fallback is shown while the sink cannot be queried.
	Fallback = "🔊 ???"

	// DefaultSink is the wpctl node queried for volume.
	DefaultSink = "@DEFAULT_AUDIO_SINK@"
)

// wpctl prints "Volume: 0.65" (optionally followed by " [MUTED]"). The two
// digits after the decimal point are the percentage; they sit at a fixed
// byte offset in the trimmed report. The offset parse is brittle by
// contract — wpctl's format is stable and locale-independent.
const (
	volumeOffset = 10
	volumeWidth  = 2
)

// Config controls the volume source.
type Config struct {
	// Command is the mixer binary (default "wpctl").
	Command string

	// Sink is the node passed to get-volume (default DefaultSink).
	Sink string

	// Interval overrides DefaultInterval when positive.
	Interval time.Duration

	// Fallback overrides the package fallback when non-empty.
	Fallback string
}

// Source polls wpctl for the current sink volume.
type Source struct {
	cfg Config
}

// New creates a volume source. Zero-value fields in cfg are replaced with
// defaults.
func New(cfg Config) *Source {
	if cfg.Command == "" {
		cfg.Command = "wpctl"
	}
	if cfg.Sink == "" {
		cfg.Sink = DefaultSink
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Fallback == "" {
		cfg.Fallback = Fallback
	}
	return &Source{cfg: cfg}
}

// Name returns the source's unique identifier.
func (s *Source) Name() string { return "volume" }

// Interval returns the poll cadence.
func (s *Source) Interval() time.Duration { return s.cfg.Interval }

// RetryDelay slows polling down while the mixer is unreachable.
func (s *Source) RetryDelay() time.Duration { return DefaultRetryDelay }

// Fallback returns the placeholder segment.
func (s *Source) Fallback() string { return s.cfg.Fallback }

// Collect runs `wpctl get-volume <sink>` and renders the result.
func (s *Source) Collect(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, s.cfg.Command, "get-volume", s.cfg.Sink).Output()
	if err != nil {
		return "", fmt.Errorf("volume: %s get-volume: %w", s.cfg.Command, err)
	}
	return Render(string(out))
}

// Render parses one wpctl get-volume report and formats the segment. Split
// out from Collect so the fixed-offset contract is testable without a
// running audio server.
func Render(report string) (string, error) {
	if !utf8.ValidString(report) {
		return "", fmt.Errorf("volume: report is not valid UTF-8")
	}

	trimmed := strings.TrimSpace(report)
	if len(trimmed) < volumeOffset+volumeWidth {
		return "", fmt.Errorf("volume: report too short: %q", trimmed)
	}

	icon := "🔊"
	if strings.Contains(report, "MUTED") {
		icon = "🔇"
	}

	percent := trimmed[volumeOffset : volumeOffset+volumeWidth]
	return fmt.Sprintf("%s %s%%", icon, percent), nil
}
