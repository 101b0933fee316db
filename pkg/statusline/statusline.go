// Package statusline emits the swaybar/i3bar JSON protocol: a header object
// line, an opening array bracket, then one single-block array per render
// tick, each line trailed by a comma per the streaming-array convention.
// The array is never closed; the stream lives as long as the process.
package statusline

import (
	"encoding/json"
	"fmt"
	"io"
)

// TimestampLayout renders the trailing clock segment. Go reference-time
// layouts are locale-independent, matching the protocol's expectations.
const TimestampLayout = "🗓️ Mon Jan 02 🕛 15:04:05"

// Header is the i3bar protocol header, emitted exactly once as the first
// line of the stream.
type Header struct {
	// Version is the protocol version; only 1 exists.
	Version int `json:"version"`

	// ClickEvents advertises whether the bar may send click events back on
	// stdin. pulsebar never reads stdin.
	ClickEvents bool `json:"click_events"`

	// ContSignal and StopSignal are the signals the bar uses to pause and
	// resume updates while hidden. Zero disables the mechanism.
	ContSignal int `json:"cont_signal"`
	StopSignal int `json:"stop_signal"`
}

// DefaultHeader returns the standard header: protocol 1, no click events,
// SIGCONT/SIGSTOP pause-resume.
func DefaultHeader() Header {
	return Header{
		Version:     1,
		ClickEvents: false,
		ContSignal:  18,
		StopSignal:  19,
	}
}

// DisableSignals zeroes the pause/resume signal advertisement, keeping the
// bar updating even while hidden.
func (h *Header) DisableSignals() {
	h.ContSignal = 0
	h.StopSignal = 0
}

// Block is one status block. pulsebar always emits a single block carrying
// the whole composite line.
type Block struct {
	FullText string `json:"full_text"`
}

// Writer serialises the protocol onto an io.Writer. It performs no
// buffering of its own; every line is one Write-visible unit.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w in a protocol writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader emits the header object line followed by the opening array
// bracket. Call exactly once, before any WriteStatus.
func (w *Writer) WriteHeader(h Header) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("statusline: marshal header: %w", err)
	}
	if _, err := fmt.Fprintf(w.w, "%s\n[\n", data); err != nil {
		return fmt.Errorf("statusline: write header: %w", err)
	}
	return nil
}

// WriteStatus emits one tick's composite text as a one-element block array
// with the protocol's trailing comma.
func (w *Writer) WriteStatus(text string) error {
	data, err := json.Marshal(Block{FullText: text})
	if err != nil {
		return fmt.Errorf("statusline: marshal block: %w", err)
	}
	if _, err := fmt.Fprintf(w.w, "[%s],\n", data); err != nil {
		return fmt.Errorf("statusline: write status: %w", err)
	}
	return nil
}
