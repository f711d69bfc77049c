// Package song provides the song record domain entity.
package song

import "time"

// ID identifies a song record within a catalog.
type ID string

// Record represents one displayable version of a title.
// Several records share a Group; each record belongs to exactly one group.
type Record struct {
	ID       ID            // Record identity (markup id or catalog id)
	Group    string        // Group title shared by all versions
	Title    string        // Version label (optional)
	AudioURL string        // Embeddable audio locator
	VideoID  string        // Video platform identifier (optional)
	EmbedURL string        // Alternate file-host embed URL (optional)
	CoverURL string        // Cover art URL
	Duration time.Duration // Known duration hint, zero if unknown
}

// MediaKind represents the kind of media source a record can activate.
type MediaKind int

const (
	MediaAudio     MediaKind = iota // Native audio element
	MediaVideo                      // Video platform embed
	MediaAlternate                  // Alternate file-host embed
)

// String returns the string representation of the media kind.
func (k MediaKind) String() string {
	switch k {
	case MediaAudio:
		return "audio"
	case MediaVideo:
		return "video"
	case MediaAlternate:
		return "alternate"
	default:
		return "unknown"
	}
}

// HasAudio reports whether the record carries an audio reference.
func (r *Record) HasAudio() bool {
	return r.AudioURL != ""
}

// HasVideo reports whether the record carries a video platform identifier.
func (r *Record) HasVideo() bool {
	return r.VideoID != ""
}

// HasAlternate reports whether the record carries an alternate embed URL.
func (r *Record) HasAlternate() bool {
	return r.EmbedURL != ""
}

// Supports reports whether the record can activate the given media kind.
// A missing optional reference means the feature is unavailable.
func (r *Record) Supports(kind MediaKind) bool {
	switch kind {
	case MediaAudio:
		return r.HasAudio()
	case MediaVideo:
		return r.HasVideo()
	case MediaAlternate:
		return r.HasAlternate()
	default:
		return false
	}
}

// DisplayTitle returns the version label, falling back to the group title.
func (r *Record) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Group
}
