package sysload

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	s := New(Config{})

	if s.Name() != "sysload" {
		t.Errorf("Name = %q, want %q", s.Name(), "sysload")
	}
	if s.Interval() != DefaultInterval {
		t.Errorf("Interval = %v, want %v", s.Interval(), DefaultInterval)
	}
	if s.Fallback() != Fallback {
		t.Errorf("Fallback = %q, want %q", s.Fallback(), Fallback)
	}
}

func TestCollectRendersRoundedPercentages(t *testing.T) {
	s := New(Config{})
	s.readCPU = func(ctx context.Context) (float64, error) { return 12.4, nil }
	s.readMem = func(ctx context.Context) (float64, error) { return 43.6, nil }

	got, err := s.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if got != "💻 12% 🧠 44%" {
		t.Errorf("Collect = %q, want %q", got, "💻 12% 🧠 44%")
	}
}

func TestCollectCPUError(t *testing.T) {
	s := New(Config{})
	s.readCPU = func(ctx context.Context) (float64, error) { return 0, errors.New("no proc") }

	if _, err := s.Collect(context.Background()); err == nil {
		t.Fatal("Collect should fail when CPU metrics fail")
	}
}

func TestCollectMemError(t *testing.T) {
	s := New(Config{})
	s.readCPU = func(ctx context.Context) (float64, error) { return 1, nil }
	s.readMem = func(ctx context.Context) (float64, error) { return 0, errors.New("no mem") }

	if _, err := s.Collect(context.Background()); err == nil {
		t.Fatal("Collect should fail when memory metrics fail")
	}
}

func TestCollectReal(t *testing.T) {
	// Smoke test against the real gopsutil readers.
	s := New(Config{Interval: time.Second})

	got, err := s.Collect(context.Background())
	if err != nil {
		t.Skipf("metrics unavailable in this environment: %v", err)
	}
	if got == "" {
		t.Error("Collect returned empty segment")
	}
}
