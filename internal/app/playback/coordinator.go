package playback

import (
	"math"

	"github.com/samber/lo"

	"github.com/osa030/versionbox/internal/app/render"
	"github.com/osa030/versionbox/internal/domain/group"
	"github.com/osa030/versionbox/internal/domain/playlist"
	"github.com/osa030/versionbox/internal/domain/song"
)

// DefaultVideoHost is the video platform used for video embeds.
const DefaultVideoHost = "www.youtube.com"

// Config holds coordinator configuration.
type Config struct {
	VideoHost string // Video platform host for embeds
	Mute      bool   // Start video embeds muted
}

// Coordinator owns the catalog and computes state transitions.
// It holds no mutable state; see Controller for the stateful wrapper.
type Coordinator struct {
	index   *group.Index
	order  []song.ID
	config Config
}

// NewCoordinator creates a coordinator over the given group index.
func NewCoordinator(index *group.Index, config Config) *Coordinator {
	if config.VideoHost == "" {
		config.VideoHost = DefaultVideoHost
	}

	return &Coordinator{
		index: index,
		order: lo.Map(index.Records(), func(r song.Record, _ int) song.ID {
			return r.ID
		}),
		config: config,
	}
}

// Index returns the group index.
func (c *Coordinator) Index() *group.Index {
	return c.index
}

// Record returns the record with the given ID.
func (c *Coordinator) Record(id song.ID) (song.Record, bool) {
	return c.index.Lookup(id)
}

// Init returns the initial state and the commands that render it.
func (c *Coordinator) Init() (State, []render.Command) {
	s := State{
		View:  ViewTitleList,
		Media: make(map[song.ID]Media, len(c.order)),
	}
	for _, id := range c.order {
		s.Media[id] = Media{}
	}

	return s, []render.Command{
		render.SetVisible(render.RegionVersions, false),
		render.SetVisible(render.RegionBackButton, false),
		render.SetVisible(render.RegionPlayAll, false),
		render.SetVisible(render.RegionTitleList, true),
		render.ListTitles(c.index.Titles()),
	}
}

// Reduce applies one event to a state.
// It returns the new state and the render commands that bring the page in line with it.
// The input state is left untouched.
func (c *Coordinator) Reduce(s State, ev Event) (State, []render.Command) {
	r := &reduction{c: c, s: s.Clone()}

	switch ev.Type {
	case EventSelectGroup:
		r.selectGroup(ev.Group)
	case EventBack:
		r.back()
	case EventTogglePlay:
		r.togglePlay(ev.Record)
	case EventPlayVideo:
		r.activateEmbed(ev.Record, song.MediaVideo)
	case EventPlayAlternate:
		r.activateEmbed(ev.Record, song.MediaAlternate)
	case EventNext:
		r.navigate(ev.Record, true)
	case EventPrev:
		r.navigate(ev.Record, false)
	case EventSeek:
		r.seek(ev.Record, ev.Fraction)
	case EventTimeUpdate:
		r.timeUpdate(ev.Record, ev.Position)
	case EventDurationChange:
		r.durationChange(ev.Record, ev.Duration)
	case EventEnded:
		r.ended(ev.Record)
	case EventPlayStarted:
		r.playStarted(ev.Record)
	case EventPlayRejected:
		r.playRejected(ev.Record)
	case EventPlayAll:
		r.playAll()
	}

	return r.s, r.cmds
}

// NextIndex returns the circular successor of i in a set of n.
// An empty set has no successor and yields -1.
func NextIndex(i, n int) int {
	if n <= 0 {
		return -1
	}
	return (i + 1) % n
}

// PrevIndex returns the circular predecessor of i in a set of n.
// An empty set has no predecessor and yields -1.
func PrevIndex(i, n int) int {
	if n <= 0 {
		return -1
	}
	return (i - 1 + n) % n
}

func buildNav(ids []song.ID) map[song.ID]Neighbors {
	n := len(ids)
	nav := make(map[song.ID]Neighbors, n)
	for i, id := range ids {
		nav[id] = Neighbors{
			Prev: ids[PrevIndex(i, n)],
			Next: ids[NextIndex(i, n)],
		}
	}
	return nav
}

// reduction accumulates the state and commands of one Reduce call.
type reduction struct {
	c    *Coordinator
	s    State
	cmds []render.Command
}

// visible reports whether id is a rendered version of the selected group.
func (r *reduction) visible(id song.ID) bool {
	_, ok := r.s.Nav[id]
	return ok
}

func (r *reduction) emit(cmds ...render.Command) {
	r.cmds = append(r.cmds, cmds...)
}

func (r *reduction) selectGroup(title string) {
	r.teardownAll()
	if len(r.s.Visible) > 0 {
		r.emit(render.Detach(r.s.Visible))
	}

	ids := r.c.index.VersionIDs(title)
	r.s.View = ViewVersions
	r.s.Group = title
	r.s.Visible = ids
	r.s.Nav = buildNav(ids)

	r.emit(
		render.SetVisible(render.RegionTitleList, false),
		render.SetVisible(render.RegionVersions, true),
		render.SetVisible(render.RegionBackButton, true),
		render.SetVisible(render.RegionPlayAll, true),
		render.SetLabel(title),
		render.Attach(ids),
	)
}

func (r *reduction) back() {
	if r.s.View != ViewVersions {
		return
	}

	r.teardownAll()
	if len(r.s.Visible) > 0 {
		r.emit(render.Detach(r.s.Visible))
	}
	r.s.View = ViewTitleList
	r.s.Group = ""
	r.s.Visible = nil
	r.s.Nav = nil

	r.emit(
		render.SetVisible(render.RegionVersions, false),
		render.SetVisible(render.RegionPlayAll, false),
		render.SetVisible(render.RegionBackButton, false),
		render.SetLabel(""),
		render.SetVisible(render.RegionTitleList, true),
	)
}

func (r *reduction) togglePlay(id song.ID) {
	rec, ok := r.c.Record(id)
	if !ok || !rec.HasAudio() || !r.visible(id) {
		return
	}
	if r.s.IsPlaying(id) {
		r.stopAudio(id)
		return
	}
	r.activateAudio(id)
}

// activateAudio tears down every competitor before requesting playback on id.
func (r *reduction) activateAudio(id song.ID) {
	rec, ok := r.c.Record(id)
	if !ok || !rec.HasAudio() {
		return
	}

	r.teardownOthers(id)
	r.unmountEmbed(id)

	m := r.s.Media[id]
	if !m.Playing && !m.Pending {
		m.Pending = true
		r.s.Media[id] = m
		r.emit(render.Play(id))
	}
	r.setActive(id)
	r.s.Playlist.Seek(id)
}

func (r *reduction) activateEmbed(id song.ID, kind song.MediaKind) {
	rec, ok := r.c.Record(id)
	if !ok || !rec.Supports(kind) || !r.visible(id) {
		return
	}

	want, url := EmbedVideo, VideoEmbedURL(r.c.config.VideoHost, rec.VideoID, r.c.config.Mute)
	if kind == song.MediaAlternate {
		want, url = EmbedAlternate, rec.EmbedURL
	}

	r.teardownOthers(id)
	r.stopAudio(id)
	r.s.Playlist = nil

	if r.s.Media[id].Embed != want {
		r.unmountEmbed(id)
		m := r.s.Media[id]
		m.Embed = want
		r.s.Media[id] = m
		r.emit(render.MountEmbed(id, kind, url))
	}
	r.setActive(id)
}

func (r *reduction) navigate(id song.ID, forward bool) {
	nb, ok := r.s.Nav[id]
	if !ok {
		return
	}
	target := nb.Prev
	if forward {
		target = nb.Next
	}

	r.stopAudio(id)
	r.unmountEmbed(id)

	if rec, _ := r.c.Record(target); rec.HasAudio() {
		r.activateAudio(target)
		return
	}
	r.teardownOthers(target)
	r.setActive(target)
}

func (r *reduction) seek(id song.ID, fraction float64) {
	m, ok := r.s.Media[id]
	if !ok || !knownDuration(m.Duration) || math.IsNaN(fraction) {
		return
	}

	m.Position = clamp01(fraction) * m.Duration
	r.s.Media[id] = m
	r.emit(render.Seek(id, m.Position))
}

func (r *reduction) timeUpdate(id song.ID, position float64) {
	m, ok := r.s.Media[id]
	if !ok {
		return
	}

	m.Position = position
	r.s.Media[id] = m

	fraction := 0.0
	if knownDuration(m.Duration) {
		fraction = clamp01(position / m.Duration)
	}
	r.emit(render.SetProgress(id, fraction, FormatTime(position)))
}

func (r *reduction) durationChange(id song.ID, duration float64) {
	m, ok := r.s.Media[id]
	if !ok {
		return
	}

	m.Duration = duration
	r.s.Media[id] = m
	r.emit(render.SetTotal(id, FormatTime(duration)))
}

// ended resets the finished track and advances a running playlist.
// The playlist stops at its last entry instead of wrapping around.
func (r *reduction) ended(id song.ID) {
	m, ok := r.s.Media[id]
	if !ok {
		return
	}

	m.Playing = false
	m.Pending = false
	m.Position = 0
	r.s.Media[id] = m
	r.emit(
		render.SetPlayState(id, false),
		render.SetProgress(id, 0, FormatTime(0)),
		render.Seek(id, 0),
	)

	current, ok := r.s.Playlist.Current()
	if !ok || current != id {
		return
	}
	if next, ok := r.s.Playlist.Advance(); ok {
		r.activateAudio(next)
		return
	}
	r.teardownAll()
}

func (r *reduction) playStarted(id song.ID) {
	m, ok := r.s.Media[id]
	if !ok {
		return
	}

	if r.s.Active == id && m.Pending {
		m.Pending = false
		m.Playing = true
		r.s.Media[id] = m
		r.emit(render.SetPlayState(id, true))
		return
	}
	if m.Playing {
		return
	}
	// Start resolved after the record lost the slot or was paused.
	r.emit(render.Pause(id))
}

func (r *reduction) playRejected(id song.ID) {
	m, ok := r.s.Media[id]
	if !ok || (!m.Pending && !m.Playing) {
		return
	}

	m.Pending = false
	m.Playing = false
	r.s.Media[id] = m
	r.emit(render.SetPlayState(id, false))
}

func (r *reduction) playAll() {
	if r.s.View != ViewVersions {
		return
	}

	ids := lo.Filter(r.s.Visible, func(id song.ID, _ int) bool {
		rec, _ := r.c.Record(id)
		return rec.HasAudio()
	})
	if len(ids) == 0 {
		return
	}

	r.s.Playlist = playlist.New(ids)
	first, _ := r.s.Playlist.Current()
	r.activateAudio(first)
}

func (r *reduction) stopAudio(id song.ID) {
	m := r.s.Media[id]
	if !m.Playing && !m.Pending {
		return
	}

	m.Playing = false
	m.Pending = false
	r.s.Media[id] = m
	r.emit(render.Pause(id), render.SetPlayState(id, false))
}

func (r *reduction) unmountEmbed(id song.ID) {
	m := r.s.Media[id]
	if m.Embed == EmbedNone {
		return
	}

	m.Embed = EmbedNone
	r.s.Media[id] = m
	r.emit(render.UnmountEmbed(id))
}

// teardownOthers stops every audio source and embed except those of keep.
func (r *reduction) teardownOthers(keep song.ID) {
	for _, id := range r.c.order {
		if id == keep {
			continue
		}
		r.stopAudio(id)
		r.unmountEmbed(id)
	}
}

func (r *reduction) teardownAll() {
	r.teardownOthers("")
	r.setActive("")
	r.s.Playlist = nil
}

func (r *reduction) setActive(id song.ID) {
	if r.s.Active == id {
		return
	}
	if r.s.Active != "" {
		r.emit(render.SetActive(r.s.Active, false))
	}
	r.s.Active = id
	if id != "" {
		r.emit(render.SetActive(id, true))
	}
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
