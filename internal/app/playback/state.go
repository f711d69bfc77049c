// Package playback provides the playback coordinator for the song versions widget.
package playback

import (
	"maps"
	"slices"

	"github.com/osa030/versionbox/internal/domain/playlist"
	"github.com/osa030/versionbox/internal/domain/song"
)

// View represents which list the widget displays.
type View int

const (
	ViewTitleList View = iota // List of group titles
	ViewVersions              // Versions of one group
)

// String returns the string representation of the view.
func (v View) String() string {
	switch v {
	case ViewTitleList:
		return "title_list"
	case ViewVersions:
		return "versions"
	default:
		return "unknown"
	}
}

// Embed represents the embed instantiated on a record.
type Embed int

const (
	EmbedNone      Embed = iota // Cover art shown
	EmbedVideo                  // Video platform iframe
	EmbedAlternate              // Alternate file-host iframe
)

// String returns the string representation of the embed.
func (e Embed) String() string {
	switch e {
	case EmbedNone:
		return "none"
	case EmbedVideo:
		return "video"
	case EmbedAlternate:
		return "alternate"
	default:
		return "unknown"
	}
}

// Media holds the media state of one record.
type Media struct {
	Playing  bool    // Audio confirmed playing
	Pending  bool    // Play requested, not yet confirmed
	Position float64 // Seconds
	Duration float64 // Seconds; zero, NaN or Inf when unknown
	Embed    Embed
}

// Neighbors holds the navigation targets of a visible record.
type Neighbors struct {
	Prev song.ID
	Next song.ID
}

// State is the complete widget state. Reduce never mutates its input.
type State struct {
	View     View
	Group    string
	Visible  []song.ID
	Nav      map[song.ID]Neighbors
	Active   song.ID // Empty when no record is active
	Media    map[song.ID]Media
	Playlist *playlist.Playlist
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	c := s
	c.Visible = slices.Clone(s.Visible)
	c.Nav = maps.Clone(s.Nav)
	c.Media = maps.Clone(s.Media)
	if c.Media == nil {
		c.Media = make(map[song.ID]Media)
	}
	c.Playlist = s.Playlist.Clone()
	return c
}

// PlayingCount returns how many records have audio playing or requested.
func (s State) PlayingCount() int {
	n := 0
	for _, m := range s.Media {
		if m.Playing || m.Pending {
			n++
		}
	}
	return n
}

// EmbedCount returns how many records have an instantiated embed.
func (s State) EmbedCount() int {
	n := 0
	for _, m := range s.Media {
		if m.Embed != EmbedNone {
			n++
		}
	}
	return n
}

// IsPlaying reports whether the record's audio is playing or requested.
func (s State) IsPlaying(id song.ID) bool {
	m := s.Media[id]
	return m.Playing || m.Pending
}
