// Package playlist provides the Playlist domain entity used for sequential "play all".
package playlist

import "github.com/osa030/versionbox/internal/domain/song"

// Playlist is an ordered traversal of song records with a cursor.
// An idle playlist has no entries and a cursor of -1.
type Playlist struct {
	entries []song.ID
	cursor  int
}

// New creates a playlist positioned on its first entry.
func New(entries []song.ID) *Playlist {
	p := &Playlist{
		entries: make([]song.ID, len(entries)),
		cursor:  -1,
	}
	copy(p.entries, entries)
	if len(p.entries) > 0 {
		p.cursor = 0
	}
	return p
}

// Active reports whether the playlist has a current entry.
func (p *Playlist) Active() bool {
	return p != nil && p.cursor >= 0 && p.cursor < len(p.entries)
}

// Current returns the entry under the cursor.
func (p *Playlist) Current() (song.ID, bool) {
	if !p.Active() {
		return "", false
	}
	return p.entries[p.cursor], true
}

// Cursor returns the cursor index, -1 when idle.
func (p *Playlist) Cursor() int {
	if !p.Active() {
		return -1
	}
	return p.cursor
}

// IsLast reports whether the cursor is on the final entry.
func (p *Playlist) IsLast() bool {
	return p.Active() && p.cursor == len(p.entries)-1
}

// Advance moves the cursor to the next entry.
// Returns false without moving when the cursor is already on the last entry.
func (p *Playlist) Advance() (song.ID, bool) {
	if !p.Active() || p.IsLast() {
		return "", false
	}
	p.cursor++
	return p.entries[p.cursor], true
}

// Seek moves the cursor to the given entry if it is part of the playlist.
func (p *Playlist) Seek(id song.ID) bool {
	if p == nil {
		return false
	}
	for i, e := range p.entries {
		if e == id {
			p.cursor = i
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (p *Playlist) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Entries returns a copy of the entries.
func (p *Playlist) Entries() []song.ID {
	if p == nil {
		return []song.ID{}
	}
	ids := make([]song.ID, len(p.entries))
	copy(ids, p.entries)
	return ids
}

// Clone returns an independent copy. A nil playlist clones to nil.
func (p *Playlist) Clone() *Playlist {
	if p == nil {
		return nil
	}
	c := New(p.entries)
	c.cursor = p.cursor
	return c
}
