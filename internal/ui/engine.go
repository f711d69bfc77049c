package ui

import (
	"slices"
	"time"

	"github.com/osa030/versionbox/internal/app/playback"
	"github.com/osa030/versionbox/internal/domain/song"
)

// DefaultTrackLength is used for records without a known duration.
const DefaultTrackLength = 30 * time.Second

// Lookup resolves a record by ID.
type Lookup func(id song.ID) (song.Record, bool)

type track struct {
	position float64
	duration float64
	running  bool
	started  bool // duration announced
}

// Engine simulates audio elements.
// It never calls back into the controller; produced events are queued and drained by the caller.
type Engine struct {
	lookup  Lookup
	tracks  map[song.ID]*track
	pending []playback.Event
	length  time.Duration
}

// NewEngine creates an engine resolving records with lookup.
func NewEngine(lookup Lookup, length time.Duration) *Engine {
	if length <= 0 {
		length = DefaultTrackLength
	}
	return &Engine{
		lookup: lookup,
		tracks: make(map[song.ID]*track),
		length: length,
	}
}

func (e *Engine) track(id song.ID) (*track, bool) {
	if t, ok := e.tracks[id]; ok {
		return t, true
	}
	rec, ok := e.lookup(id)
	if !ok || !rec.HasAudio() {
		return nil, false
	}
	d := rec.Duration
	if d <= 0 {
		d = e.length
	}
	t := &track{duration: d.Seconds()}
	e.tracks[id] = t
	return t, true
}

// Play starts an element. The start resolves as PlayStarted or PlayRejected.
func (e *Engine) Play(id song.ID) {
	t, ok := e.track(id)
	if !ok {
		e.pending = append(e.pending, playback.PlayRejected(id, "no audio source"))
		return
	}
	if !t.started {
		t.started = true
		e.pending = append(e.pending, playback.DurationChange(id, t.duration))
	}
	t.running = true
	e.pending = append(e.pending, playback.PlayStarted(id))
}

// Pause stops an element, keeping its position.
func (e *Engine) Pause(id song.ID) {
	if t, ok := e.tracks[id]; ok {
		t.running = false
	}
}

// Seek moves an element to position seconds.
func (e *Engine) Seek(id song.ID, position float64) {
	t, ok := e.track(id)
	if !ok {
		return
	}
	t.position = min(max(position, 0), t.duration)
	e.pending = append(e.pending, playback.TimeUpdate(id, t.position))
}

// Advance moves running elements forward by d and reports progress and ends.
func (e *Engine) Advance(d time.Duration) {
	for _, id := range e.Running() {
		t := e.tracks[id]
		t.position += d.Seconds()
		if t.position >= t.duration {
			t.position = 0
			t.running = false
			e.pending = append(e.pending, playback.TimeUpdate(id, t.duration), playback.Ended(id))
			continue
		}
		e.pending = append(e.pending, playback.TimeUpdate(id, t.position))
	}
}

// Running returns the running elements in ID order.
func (e *Engine) Running() []song.ID {
	var ids []song.ID
	for id, t := range e.tracks {
		if t.running {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Drain returns and clears the queued events.
func (e *Engine) Drain() []playback.Event {
	out := e.pending
	e.pending = nil
	return out
}
