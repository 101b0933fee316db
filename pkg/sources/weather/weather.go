// Package weather polls a weather CLI (bom-buddy) and passes its
// pre-rendered output through as a status segment.
package weather

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultInterval is the poll cadence. Weather changes slowly and the
	// CLI hits the network, so this is the slowest source by far.
	DefaultInterval = 5137 * time.Millisecond

	// Fallback is shown while the forecast cannot be fetched.
	Fallback = "🛰️ ???"
)

// Config controls the weather source.
type Config struct {
	// Command is the weather binary (default "bom-buddy").
	Command string

	// Check adds the CLI's --check flag, which re-validates the configured
	// station before reporting.
	Check bool

	// Interval overrides DefaultInterval when positive.
	Interval time.Duration

	// Fallback overrides the package fallback when non-empty.
	Fallback string
}

// Source polls the weather CLI.
type Source struct {
	cfg  Config
	args []string
}

// New creates a weather source. Zero-value fields in cfg are replaced with
// defaults.
func New(cfg Config) *Source {
	if cfg.Command == "" {
		cfg.Command = "bom-buddy"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Fallback == "" {
		cfg.Fallback = Fallback
	}

	args := []string{"current"}
	if cfg.Check {
		args = append(args, "--check")
	}
	return &Source{cfg: cfg, args: args}
}

// Name returns the source's unique identifier.
func (s *Source) Name() string { return "weather" }

// Interval returns the poll cadence.
func (s *Source) Interval() time.Duration { return s.cfg.Interval }

// Fallback returns the placeholder segment.
func (s *Source) Fallback() string { return s.cfg.Fallback }

// Collect runs the weather CLI and returns its output verbatim, minus the
// trailing newline. The CLI owns the rendering; this adapter only moves
// bytes.
func (s *Source) Collect(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, s.cfg.Command, s.args...).Output()
	if err != nil {
		return "", fmt.Errorf("weather: %s %s: %w", s.cfg.Command, strings.Join(s.args, " "), err)
	}
	if !utf8.Valid(out) {
		return "", fmt.Errorf("weather: output is not valid UTF-8")
	}
	return strings.TrimRight(string(out), "\n"), nil
}
