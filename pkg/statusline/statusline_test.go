package statusline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/pulsebar/pkg/sources"
)

func TestDefaultHeader(t *testing.T) {
	h := DefaultHeader()

	if h.Version != 1 {
		t.Errorf("Version = %d, want 1", h.Version)
	}
	if h.ClickEvents {
		t.Error("ClickEvents should default to false")
	}
	if h.ContSignal != 18 || h.StopSignal != 19 {
		t.Errorf("signals = %d/%d, want 18/19", h.ContSignal, h.StopSignal)
	}
}

func TestHeaderDisableSignals(t *testing.T) {
	h := DefaultHeader()
	h.DisableSignals()

	if h.ContSignal != 0 || h.StopSignal != 0 {
		t.Errorf("signals = %d/%d, want 0/0", h.ContSignal, h.StopSignal)
	}
}

func TestWriteHeaderRoundTrip(t *testing.T) {
	// The emitted header line must parse back with all four fields intact.
	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteHeader(DefaultHeader()); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("header wrote %d lines, want 2 (object + bracket)", len(lines))
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &parsed); err != nil {
		t.Fatalf("header line is not valid JSON: %v", err)
	}
	for _, field := range []string{"version", "click_events", "cont_signal", "stop_signal"} {
		if _, ok := parsed[field]; !ok {
			t.Errorf("header missing field %q", field)
		}
	}

	var h Header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("header round-trip failed: %v", err)
	}
	if h != DefaultHeader() {
		t.Errorf("round-trip = %+v, want %+v", h, DefaultHeader())
	}

	if lines[1] != "[" {
		t.Errorf("second line = %q, want opening bracket", lines[1])
	}
}

func TestWriteStatusFraming(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteStatus("🔊 65% now"); err != nil {
		t.Fatalf("WriteStatus failed: %v", err)
	}

	line := strings.TrimRight(buf.String(), "\n")
	if !strings.HasSuffix(line, ",") {
		t.Fatalf("status line %q missing trailing comma", line)
	}

	var blocks []Block
	if err := json.Unmarshal([]byte(strings.TrimSuffix(line, ",")), &blocks); err != nil {
		t.Fatalf("status line is not a JSON array: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("status array has %d blocks, want 1", len(blocks))
	}
	if blocks[0].FullText != "🔊 65% now" {
		t.Errorf("full_text = %q, want %q", blocks[0].FullText, "🔊 65% now")
	}
}

func TestWriteStatusEscapesText(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteStatus(`quote " and \ slash`); err != nil {
		t.Fatalf("WriteStatus failed: %v", err)
	}

	var blocks []Block
	line := strings.TrimSuffix(strings.TrimRight(buf.String(), "\n"), ",")
	if err := json.Unmarshal([]byte(line), &blocks); err != nil {
		t.Fatalf("escaped status does not parse: %v", err)
	}
	if blocks[0].FullText != `quote " and \ slash` {
		t.Errorf("full_text = %q", blocks[0].FullText)
	}
}

// --- Composite Tests ---

func fixedNow() time.Time {
	return time.Date(2024, time.March, 9, 14, 30, 5, 0, time.UTC)
}

func TestCompositeNoSources(t *testing.T) {
	// With every source disabled the composite is exactly the timestamp.
	l := NewLoop(nil, withNow(fixedNow))

	got := l.Composite(fixedNow())
	want := "🗓️ Sat Mar 09 🕛 14:30:05"
	if got != want {
		t.Errorf("Composite = %q, want %q", got, want)
	}
}

func TestCompositeOrderAndSeparators(t *testing.T) {
	a := sources.NewPoller(sources.NewMockSource("a", time.Hour, sources.WithFallback("AAA")), nil)
	b := sources.NewPoller(sources.NewMockSource("b", time.Hour, sources.WithFallback("BBB")), nil)
	l := NewLoop([]*sources.Poller{a, b})

	got := l.Composite(fixedNow())
	want := "AAA BBB 🗓️ Sat Mar 09 🕛 14:30:05"
	if got != want {
		t.Errorf("Composite = %q, want %q", got, want)
	}
}

func TestCompositeReadsLatestEachTick(t *testing.T) {
	src := sources.NewMockSource("live", time.Hour, sources.WithFallback("old"))
	p := sources.NewPoller(src, nil)
	l := NewLoop([]*sources.Poller{p})

	first := l.Composite(fixedNow())
	if !strings.HasPrefix(first, "old ") {
		t.Errorf("first composite = %q, want prefix %q", first, "old ")
	}
}

// --- Loop Tests ---

func TestRunEmitsValidProtocol(t *testing.T) {
	p := sources.NewPoller(sources.NewMockSource("seg", time.Hour, sources.WithFallback("SEG")), nil)
	l := NewLoop([]*sources.Poller{p}, WithTick(5*time.Millisecond), withNow(fixedNow))

	var buf bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := l.Run(ctx, &buf, DefaultHeader())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run returned %v, want deadline exceeded", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("stream has %d lines, want header + bracket + ticks", len(lines))
	}

	var h Header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("header does not parse: %v", err)
	}
	if lines[1] != "[" {
		t.Fatalf("line 2 = %q, want bracket", lines[1])
	}

	for i, line := range lines[2:] {
		var blocks []Block
		if err := json.Unmarshal([]byte(strings.TrimSuffix(line, ",")), &blocks); err != nil {
			t.Fatalf("tick line %d does not parse: %v (%q)", i, err, line)
		}
		want := "SEG 🗓️ Sat Mar 09 🕛 14:30:05"
		if blocks[0].FullText != want {
			t.Errorf("tick %d full_text = %q, want %q", i, blocks[0].FullText, want)
		}
	}
}

func TestRunAllSourcesDisabled(t *testing.T) {
	// End-to-end: no sources at all still yields a valid stream whose text
	// is exactly the timestamp rendering.
	l := NewLoop(nil, WithTick(5*time.Millisecond), withNow(fixedNow))

	var buf bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	l.Run(ctx, &buf, DefaultHeader())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("stream has %d lines, want at least 3", len(lines))
	}
	for _, line := range lines[2:] {
		var blocks []Block
		if err := json.Unmarshal([]byte(strings.TrimSuffix(line, ",")), &blocks); err != nil {
			t.Fatalf("tick line does not parse: %v", err)
		}
		if blocks[0].FullText != "🗓️ Sat Mar 09 🕛 14:30:05" {
			t.Errorf("full_text = %q, want bare timestamp", blocks[0].FullText)
		}
	}
}

func TestRunFailingSourceShowsFallbackEveryTick(t *testing.T) {
	// End-to-end: an always-failing source contributes its exact configured
	// fallback on every tick.
	src := sources.NewMockSource("dead", 2*time.Millisecond,
		sources.WithFallback("🛰️ ???"),
		sources.WithError(errors.New("spawn failed")),
	)
	p := sources.NewPoller(src, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	l := NewLoop([]*sources.Poller{p}, WithTick(5*time.Millisecond), withNow(fixedNow))
	var buf bytes.Buffer
	l.Run(ctx, &buf, DefaultHeader())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	ticks := lines[2:]
	if len(ticks) == 0 {
		t.Fatal("no tick lines emitted")
	}
	for i, line := range ticks {
		var blocks []Block
		if err := json.Unmarshal([]byte(strings.TrimSuffix(line, ",")), &blocks); err != nil {
			t.Fatalf("tick %d does not parse: %v", i, err)
		}
		want := "🛰️ ??? 🗓️ Sat Mar 09 🕛 14:30:05"
		if blocks[0].FullText != want {
			t.Errorf("tick %d full_text = %q, want %q", i, blocks[0].FullText, want)
		}
	}
}

func TestRunPlainMode(t *testing.T) {
	p := sources.NewPoller(sources.NewMockSource("seg", time.Hour, sources.WithFallback("SEG")), nil)
	l := NewLoop([]*sources.Poller{p},
		WithTick(5*time.Millisecond),
		WithPlainOutput(),
		withNow(fixedNow),
	)

	var buf bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	l.Run(ctx, &buf, DefaultHeader())

	out := buf.String()
	if strings.Contains(out, "full_text") || strings.Contains(out, "[") {
		t.Errorf("plain mode leaked protocol framing: %q", out)
	}
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line != "SEG 🗓️ Sat Mar 09 🕛 14:30:05" {
			t.Errorf("plain line = %q", line)
		}
	}
}

func TestRunStopsOnWriteError(t *testing.T) {
	l := NewLoop(nil, WithTick(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := l.Run(ctx, failWriter{}, DefaultHeader())
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run = %v, want write error", err)
	}
}

// --- helpers ---

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}
