package render

import (
	"slices"

	"github.com/osa030/versionbox/internal/domain/song"
)

// Embed describes an instantiated embed.
type Embed struct {
	Kind song.MediaKind
	URL  string
}

// Progress describes a record's progress indicator.
type Progress struct {
	Fraction float64
	Elapsed  string
}

// Recorder is an in-memory page model.
// It keeps the resulting presentation state and the raw command log.
type Recorder struct {
	Visible  map[Region]bool
	Label    string
	Titles   []string
	Attached []song.ID
	Embeds   map[song.ID]Embed
	Playing  map[song.ID]bool // play/pause indicator
	Audio    map[song.ID]bool // audio element running
	Progress map[song.ID]Progress
	Total    map[song.ID]string
	Active   map[song.ID]bool
	Position map[song.ID]float64
	Log      []Command
}

var _ Renderer = (*Recorder)(nil)

// NewRecorder creates an empty page model.
func NewRecorder() *Recorder {
	return &Recorder{
		Visible:  make(map[Region]bool),
		Embeds:   make(map[song.ID]Embed),
		Playing:  make(map[song.ID]bool),
		Audio:    make(map[song.ID]bool),
		Progress: make(map[song.ID]Progress),
		Total:    make(map[song.ID]string),
		Active:   make(map[song.ID]bool),
		Position: make(map[song.ID]float64),
	}
}

func (r *Recorder) SetVisible(region Region, visible bool) {
	r.Log = append(r.Log, SetVisible(region, visible))
	r.Visible[region] = visible
}

func (r *Recorder) SetLabel(text string) {
	r.Log = append(r.Log, SetLabel(text))
	r.Label = text
}

func (r *Recorder) ListTitles(titles []string) {
	r.Log = append(r.Log, ListTitles(titles))
	r.Titles = slices.Clone(titles)
}

func (r *Recorder) Attach(ids []song.ID) {
	r.Log = append(r.Log, Attach(ids))
	r.Attached = append(r.Attached, ids...)
}

func (r *Recorder) Detach(ids []song.ID) {
	r.Log = append(r.Log, Detach(ids))
	r.Attached = slices.DeleteFunc(r.Attached, func(id song.ID) bool {
		return slices.Contains(ids, id)
	})
}

func (r *Recorder) MountEmbed(id song.ID, kind song.MediaKind, url string) {
	r.Log = append(r.Log, MountEmbed(id, kind, url))
	r.Embeds[id] = Embed{Kind: kind, URL: url}
}

func (r *Recorder) UnmountEmbed(id song.ID) {
	r.Log = append(r.Log, UnmountEmbed(id))
	delete(r.Embeds, id)
}

func (r *Recorder) SetPlayState(id song.ID, playing bool) {
	r.Log = append(r.Log, SetPlayState(id, playing))
	r.Playing[id] = playing
	if !playing {
		// A stopped indicator means the element is no longer producing sound.
		r.Audio[id] = false
	}
}

func (r *Recorder) SetProgress(id song.ID, fraction float64, elapsed string) {
	r.Log = append(r.Log, SetProgress(id, fraction, elapsed))
	r.Progress[id] = Progress{Fraction: fraction, Elapsed: elapsed}
}

func (r *Recorder) SetTotal(id song.ID, total string) {
	r.Log = append(r.Log, SetTotal(id, total))
	r.Total[id] = total
}

func (r *Recorder) SetActiveHighlight(id song.ID, active bool) {
	r.Log = append(r.Log, SetActive(id, active))
	r.Active[id] = active
}

func (r *Recorder) Play(id song.ID) {
	r.Log = append(r.Log, Play(id))
	r.Audio[id] = true
}

func (r *Recorder) Pause(id song.ID) {
	r.Log = append(r.Log, Pause(id))
	r.Audio[id] = false
}

func (r *Recorder) Seek(id song.ID, position float64) {
	r.Log = append(r.Log, Seek(id, position))
	r.Position[id] = position
}

// RunningAudio returns the records whose audio element is running.
func (r *Recorder) RunningAudio() []song.ID {
	return trueKeys(r.Audio)
}

// Highlighted returns the records carrying the active highlight.
func (r *Recorder) Highlighted() []song.ID {
	return trueKeys(r.Active)
}

// Reset clears the command log, keeping the page model.
func (r *Recorder) Reset() {
	r.Log = nil
}

func trueKeys(m map[song.ID]bool) []song.ID {
	ids := make([]song.ID, 0, len(m))
	for id, on := range m {
		if on {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
