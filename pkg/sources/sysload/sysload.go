// Package sysload renders a compact CPU/RAM segment using gopsutil. It is
// an optional extra segment, disabled by default.
package sysload

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	// DefaultInterval is the poll cadence.
	DefaultInterval = 2 * time.Second

	// Fallback is shown while metrics cannot be read.
	Fallback = "💻 ???"
)

// Config controls the sysload source.
type Config struct {
	// Interval overrides DefaultInterval when positive.
	Interval time.Duration

	// Fallback overrides the package fallback when non-empty.
	Fallback string
}

// Source reads aggregate CPU and memory utilisation.
type Source struct {
	cfg Config

	// readCPU and readMem are swappable for tests.
	readCPU func(ctx context.Context) (float64, error)
	readMem func(ctx context.Context) (float64, error)
}

// New creates a sysload source. Zero-value fields in cfg are replaced with
// defaults.
func New(cfg Config) *Source {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Fallback == "" {
		cfg.Fallback = Fallback
	}
	return &Source{
		cfg:     cfg,
		readCPU: readCPUPercent,
		readMem: readMemPercent,
	}
}

// Name returns the source's unique identifier.
func (s *Source) Name() string { return "sysload" }

// Interval returns the poll cadence.
func (s *Source) Interval() time.Duration { return s.cfg.Interval }

// Fallback returns the placeholder segment.
func (s *Source) Fallback() string { return s.cfg.Fallback }

// Collect reads CPU and memory utilisation and renders both as rounded
// percentages.
func (s *Source) Collect(ctx context.Context) (string, error) {
	cpuPct, err := s.readCPU(ctx)
	if err != nil {
		return "", fmt.Errorf("sysload: cpu: %w", err)
	}
	memPct, err := s.readMem(ctx)
	if err != nil {
		return "", fmt.Errorf("sysload: mem: %w", err)
	}
	return fmt.Sprintf("💻 %.0f%% 🧠 %.0f%%", cpuPct, memPct), nil
}

// readCPUPercent returns the aggregate CPU utilisation since the previous
// call (gopsutil keeps the last-sample state internally when interval is 0).
func readCPUPercent(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("no cpu samples")
	}
	return percents[0], nil
}

// readMemPercent returns the physical memory utilisation.
func readMemPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}
