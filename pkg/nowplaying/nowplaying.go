// Package nowplaying renders a media player snapshot into a bounded-width
// status segment. It is pure formatting: artist selection and joining,
// grapheme-cluster-aware truncation, and MM:SS playback clocks. Transport
// concerns (how the snapshot was obtained) live in pkg/sources/mpdsource.
package nowplaying

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rivo/uniseg"
)

const (
	// MaxClusters is the display budget for "ARTIST - TITLE", measured in
	// grapheme clusters. Longer text is cut at a cluster boundary and given
	// a trailing ellipsis.
	MaxClusters = 70

	icon     = "🎵"
	unknown  = "???"
	ellipsis = "…"
)

// NotPlaying is the segment shown when the player has no current track.
const NotPlaying = icon + " " + unknown

// Snapshot is a read-only view of the player's current track and playback
// position. A nil Snapshot means nothing is playing.
type Snapshot struct {
	// Title is the track title; empty means unknown.
	Title string

	// Artists lists the track artists in tag order.
	Artists []string

	// AlbumArtists lists the album artists, used when Artists is empty.
	AlbumArtists []string

	// Elapsed and Duration are the playback position. They are only
	// meaningful when HasElapsed is true; a stopped player reports neither.
	Elapsed  time.Duration
	Duration time.Duration

	// HasElapsed reports whether the player provided a playback position.
	HasElapsed bool
}

// Format renders the snapshot as "🎵 ARTIST - TITLE (MM:SS/MM:SS)". A nil
// snapshot renders as NotPlaying.
func Format(s *Snapshot) string {
	if s == nil {
		return NotPlaying
	}

	artists := s.Artists
	if len(artists) == 0 && len(s.AlbumArtists) > 0 {
		artists = s.AlbumArtists
	}

	title := s.Title
	if title == "" {
		title = unknown
	}

	text := truncate(joinArtists(artists)+" - "+title, MaxClusters)

	clock := "00:00"
	if s.HasElapsed {
		clock = formatClock(s.Elapsed) + "/" + formatClock(s.Duration)
	}

	return icon + " " + text + " (" + clock + ")"
}

// joinArtists collapses the artist list into one display name. Two artists
// read naturally as a duo; three or more become a plain comma list with no
// "and" before the last name.
func joinArtists(artists []string) string {
	switch len(artists) {
	case 0:
		return unknown
	case 1:
		return artists[0]
	case 2:
		return artists[0] + " & " + artists[1]
	default:
		return strings.Join(artists, ", ")
	}
}

// truncate cuts s at the max-th grapheme cluster boundary, trims whitespace
// left dangling by the cut, and appends an ellipsis. Cutting on cluster
// boundaries keeps emoji and combining sequences intact; byte or rune
// offsets would split them.
func truncate(s string, max int) string {
	if uniseg.GraphemeClusterCount(s) <= max {
		return s
	}

	var cut, n int
	state := -1
	rest := s
	for len(rest) > 0 && n < max {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		cut += len(cluster)
		n++
	}

	head := strings.TrimRightFunc(s[:cut], unicode.IsSpace)
	return head + ellipsis
}

// formatClock renders d as zero-padded MM:SS. Minutes are not wrapped into
// hours: 3661s renders as "61:01".
func formatClock(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
