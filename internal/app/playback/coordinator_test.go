package playback

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/versionbox/internal/app/render"
	"github.com/osa030/versionbox/internal/domain/group"
	"github.com/osa030/versionbox/internal/domain/song"
)

func testRecords() []song.Record {
	return []song.Record{
		{ID: "s1", Group: "Blue Moon", AudioURL: "s1.mp3", VideoID: "vid1"},
		{ID: "s2", Group: "Blue Moon", AudioURL: "s2.mp3", EmbedURL: "https://files.example.com/embed/s2"},
		{ID: "s3", Group: "Blue Moon", AudioURL: "s3.mp3"},
		{ID: "s4", Group: "Summertime", AudioURL: "s4.mp3"},
		{ID: "s5", Group: "Summertime", VideoID: "vid5"},
	}
}

func newTestCoordinator() *Coordinator {
	return NewCoordinator(group.Build(testRecords()), Config{})
}

// harness drives a coordinator and a page model, checking exclusivity after every step.
type harness struct {
	t     *testing.T
	coord *Coordinator
	state State
	page  *render.Recorder
}

func newHarness(t *testing.T) *harness {
	coord := newTestCoordinator()
	state, cmds := coord.Init()
	page := render.NewRecorder()
	render.Apply(page, cmds)
	page.Reset()
	return &harness{t: t, coord: coord, state: state, page: page}
}

func (h *harness) do(events ...Event) []render.Command {
	var last []render.Command
	for _, ev := range events {
		h.state, last = h.coord.Reduce(h.state, ev)
		render.Apply(h.page, last)
		h.checkInvariants(ev)
	}
	return last
}

func (h *harness) checkInvariants(ev Event) {
	h.t.Helper()
	assert.LessOrEqual(h.t, h.state.PlayingCount(), 1, "playing sources after %s", ev.Type)
	assert.LessOrEqual(h.t, h.state.EmbedCount(), 1, "embeds after %s", ev.Type)
	assert.LessOrEqual(h.t, len(h.page.RunningAudio()), 1, "running audio elements after %s", ev.Type)
	assert.LessOrEqual(h.t, len(h.page.Embeds), 1, "mounted embeds after %s", ev.Type)
	assert.LessOrEqual(h.t, len(h.page.Highlighted()), 1, "highlighted records after %s", ev.Type)
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{65, "1:05"},
		{5, "0:05"},
		{0, "0:00"},
		{59.99, "0:59"},
		{60, "1:00"},
		{125.7, "2:05"},
		{3600, "60:00"},
		{-3, "0:00"},
		{math.NaN(), "0:00"},
		{math.Inf(1), "0:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTime(tt.seconds))
		})
	}
}

func TestVideoEmbedURL(t *testing.T) {
	assert.Equal(t,
		"https://www.youtube.com/embed/abc123?autoplay=1&mute=0&loop=1&playlist=abc123",
		VideoEmbedURL(DefaultVideoHost, "abc123", false))
	assert.Equal(t,
		"https://www.youtube-nocookie.com/embed/abc123?autoplay=1&mute=1&loop=1&playlist=abc123",
		VideoEmbedURL("www.youtube-nocookie.com", "abc123", true))
}

func TestNavigationIndexCycle(t *testing.T) {
	for n := 1; n <= 7; n++ {
		for start := 0; start < n; start++ {
			i := start
			for step := 0; step < n; step++ {
				i = NextIndex(i, n)
				require.GreaterOrEqual(t, i, 0)
				require.Less(t, i, n)
			}
			assert.Equal(t, start, i, "next applied %d times from %d", n, start)

			p := PrevIndex(start, n)
			assert.GreaterOrEqual(t, p, 0)
			assert.Less(t, p, n)
			assert.Equal(t, start, NextIndex(p, n))
		}
	}
}

func TestNavigationIndex_EmptySet(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, -1, NextIndex(0, 0))
		assert.Equal(t, -1, PrevIndex(0, 0))
		assert.Equal(t, -1, NextIndex(3, -1))
	})
}

func TestInit(t *testing.T) {
	coord := newTestCoordinator()
	state, cmds := coord.Init()

	assert.Equal(t, ViewTitleList, state.View)
	assert.Empty(t, state.Visible)
	assert.Empty(t, state.Active)
	assert.Nil(t, state.Playlist)
	assert.Len(t, state.Media, 5)

	page := render.NewRecorder()
	render.Apply(page, cmds)
	assert.True(t, page.Visible[render.RegionTitleList])
	assert.False(t, page.Visible[render.RegionVersions])
	assert.False(t, page.Visible[render.RegionBackButton])
	assert.False(t, page.Visible[render.RegionPlayAll])
	assert.Equal(t, []string{"Blue Moon", "Summertime"}, page.Titles)
}

func TestSelectGroup(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"))

	assert.Equal(t, ViewVersions, h.state.View)
	assert.Equal(t, "Blue Moon", h.state.Group)
	assert.Equal(t, []song.ID{"s1", "s2", "s3"}, h.state.Visible)
	assert.Equal(t, Neighbors{Prev: "s3", Next: "s2"}, h.state.Nav["s1"])
	assert.Equal(t, Neighbors{Prev: "s2", Next: "s1"}, h.state.Nav["s3"])

	assert.Equal(t, "Blue Moon", h.page.Label)
	assert.Equal(t, []song.ID{"s1", "s2", "s3"}, h.page.Attached)
	assert.False(t, h.page.Visible[render.RegionTitleList])
	assert.True(t, h.page.Visible[render.RegionVersions])
	assert.True(t, h.page.Visible[render.RegionBackButton])
	assert.True(t, h.page.Visible[render.RegionPlayAll])
}

func TestSelectGroup_Unknown(t *testing.T) {
	h := newHarness(t)
	cmds := h.do(SelectGroup("No Such Title"))

	assert.Equal(t, ViewVersions, h.state.View)
	assert.Empty(t, h.state.Visible)
	assert.Contains(t, cmds, render.Attach([]song.ID{}))
	assert.Empty(t, h.page.Attached)
	assert.Equal(t, "No Such Title", h.page.Label)
}

func TestSelectGroup_WhileInVersionsReplacesVisibleSet(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), TogglePlay("s1"), PlayStarted("s1"))

	cmds := h.do(SelectGroup("Summertime"))

	assert.Equal(t, []song.ID{"s4", "s5"}, h.state.Visible)
	assert.Equal(t, []song.ID{"s4", "s5"}, h.page.Attached)
	assert.Empty(t, h.state.Active)
	assert.Zero(t, h.state.PlayingCount())
	assert.Contains(t, cmds, render.Detach([]song.ID{"s1", "s2", "s3"}))
}

func TestTogglePlay_AsyncStart(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"))

	cmds := h.do(TogglePlay("s1"))
	assert.Equal(t, []render.Command{
		render.Play("s1"),
		render.SetActive("s1", true),
	}, cmds)
	assert.True(t, h.state.Media["s1"].Pending)
	assert.False(t, h.state.Media["s1"].Playing)
	assert.False(t, h.page.Playing["s1"], "indicator flips only once playback starts")

	cmds = h.do(PlayStarted("s1"))
	assert.Equal(t, []render.Command{render.SetPlayState("s1", true)}, cmds)
	assert.True(t, h.state.Media["s1"].Playing)

	cmds = h.do(TogglePlay("s1"))
	assert.Equal(t, []render.Command{
		render.Pause("s1"),
		render.SetPlayState("s1", false),
	}, cmds)
	assert.False(t, h.state.IsPlaying("s1"))
	assert.Equal(t, song.ID("s1"), h.state.Active, "a paused record stays highlighted")
}

func TestTogglePlay_PausesOthersFirst(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), TogglePlay("s1"), PlayStarted("s1"))

	cmds := h.do(TogglePlay("s2"))

	assert.Equal(t, []render.Command{
		render.Pause("s1"),
		render.SetPlayState("s1", false),
		render.Play("s2"),
		render.SetActive("s1", false),
		render.SetActive("s2", true),
	}, cmds)
	assert.Equal(t, song.ID("s2"), h.state.Active)
	assert.Equal(t, []song.ID{"s2"}, h.page.RunningAudio())
}

func TestTogglePlay_NoAudioIsNoop(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Summertime"))

	cmds := h.do(TogglePlay("s5"))
	assert.Empty(t, cmds)

	cmds = h.do(TogglePlay("missing"))
	assert.Empty(t, cmds)
}

func TestActivation_RequiresVisibleRecord(t *testing.T) {
	h := newHarness(t)
	assert.Empty(t, h.do(TogglePlay("s1")), "title list shows no versions")

	h.do(SelectGroup("Summertime"))
	assert.Empty(t, h.do(TogglePlay("s1")))
	assert.Empty(t, h.do(PlayVideo("s1")))
	assert.Empty(t, h.state.Active)
}

func TestPlayRejected(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), TogglePlay("s1"))

	cmds := h.do(PlayRejected("s1", "NotAllowedError"))

	assert.Equal(t, []render.Command{render.SetPlayState("s1", false)}, cmds)
	assert.False(t, h.state.IsPlaying("s1"))
	assert.Zero(t, h.state.PlayingCount())

	// A second rejection has nothing left to undo
	assert.Empty(t, h.do(PlayRejected("s1", "NotAllowedError")))
}

func TestPlayStarted_StaleStartIsPaused(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), TogglePlay("s1"), TogglePlay("s2"))

	cmds := h.do(PlayStarted("s1"))

	assert.Equal(t, []render.Command{render.Pause("s1")}, cmds)
	assert.False(t, h.state.IsPlaying("s1"))
	assert.True(t, h.state.Media["s2"].Pending)
}

func TestPlayVideoAndAlternate(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), TogglePlay("s2"), PlayStarted("s2"))

	cmds := h.do(PlayVideo("s1"))
	assert.Equal(t, []render.Command{
		render.Pause("s2"),
		render.SetPlayState("s2", false),
		render.MountEmbed("s1", song.MediaVideo,
			"https://www.youtube.com/embed/vid1?autoplay=1&mute=0&loop=1&playlist=vid1"),
		render.SetActive("s2", false),
		render.SetActive("s1", true),
	}, cmds)
	assert.Equal(t, EmbedVideo, h.state.Media["s1"].Embed)

	// Same embed again changes nothing
	assert.Empty(t, h.do(PlayVideo("s1")))

	cmds = h.do(PlayAlternate("s2"))
	assert.Equal(t, []render.Command{
		render.UnmountEmbed("s1"),
		render.MountEmbed("s2", song.MediaAlternate, "https://files.example.com/embed/s2"),
		render.SetActive("s1", false),
		render.SetActive("s2", true),
	}, cmds)
	assert.Equal(t, map[song.ID]render.Embed{
		"s2": {Kind: song.MediaAlternate, URL: "https://files.example.com/embed/s2"},
	}, h.page.Embeds)

	// Missing references are no-ops
	assert.Empty(t, h.do(PlayVideo("s3")))
	assert.Empty(t, h.do(PlayAlternate("s1")))
}

func TestPlayAudio_TearsDownOwnEmbed(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), PlayVideo("s1"))

	cmds := h.do(TogglePlay("s1"))

	assert.Equal(t, []render.Command{
		render.UnmountEmbed("s1"),
		render.Play("s1"),
	}, cmds)
	assert.Zero(t, h.state.EmbedCount())
}

func TestPlayVideo_PausesOwnAudio(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), TogglePlay("s1"), PlayStarted("s1"))

	cmds := h.do(PlayVideo("s1"))

	assert.Equal(t, render.Pause("s1"), cmds[0])
	assert.False(t, h.state.IsPlaying("s1"))
	assert.Equal(t, EmbedVideo, h.state.Media["s1"].Embed)
}

func TestNextPrev_Wraparound(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), TogglePlay("s3"), PlayStarted("s3"))

	cmds := h.do(Next("s3"))
	assert.Equal(t, []render.Command{
		render.Pause("s3"),
		render.SetPlayState("s3", false),
		render.Play("s1"),
		render.SetActive("s3", false),
		render.SetActive("s1", true),
	}, cmds)
	assert.Equal(t, song.ID("s1"), h.state.Active)

	h.do(PlayStarted("s1"), Prev("s1"))
	assert.Equal(t, song.ID("s3"), h.state.Active)
	assert.True(t, h.state.Media["s3"].Pending)
	assert.False(t, h.state.IsPlaying("s1"))
}

func TestNext_CycleReturnsToStart(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), TogglePlay("s2"))

	current := song.ID("s2")
	for i := 0; i < len(h.state.Visible); i++ {
		h.do(PlayStarted(current), Next(current))
		current = h.state.Active
		assert.Contains(t, h.state.Visible, current)
	}
	assert.Equal(t, song.ID("s2"), current)
}

func TestNext_ResetsCurrentEmbed(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), PlayVideo("s1"))

	cmds := h.do(Next("s1"))

	assert.Equal(t, render.UnmountEmbed("s1"), cmds[0])
	assert.Equal(t, song.ID("s2"), h.state.Active)
	assert.Empty(t, h.page.Embeds)
}

func TestNext_OutsideVisibleSetIsNoop(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"))

	assert.Empty(t, h.do(Next("s4")))
	assert.Empty(t, h.do(Prev("missing")))
}

func TestNext_TargetWithoutAudioIsHighlighted(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Summertime"), TogglePlay("s4"), PlayStarted("s4"))

	cmds := h.do(Next("s4"))

	assert.Equal(t, []render.Command{
		render.Pause("s4"),
		render.SetPlayState("s4", false),
		render.SetActive("s4", false),
		render.SetActive("s5", true),
	}, cmds)
	assert.Zero(t, h.state.PlayingCount())
}

func TestSeek(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		fraction float64
		expected float64
		noop     bool
	}{
		{name: "quarter", duration: 200, fraction: 0.25, expected: 50},
		{name: "start", duration: 200, fraction: 0, expected: 0},
		{name: "end", duration: 200, fraction: 1, expected: 200},
		{name: "clamped above", duration: 200, fraction: 1.5, expected: 200},
		{name: "clamped below", duration: 200, fraction: -0.2, expected: 0},
		{name: "unknown duration", duration: 0, fraction: 0.5, noop: true},
		{name: "infinite duration", duration: math.Inf(1), fraction: 0.5, noop: true},
		{name: "nan duration", duration: math.NaN(), fraction: 0.5, noop: true},
		{name: "nan fraction", duration: 200, fraction: math.NaN(), noop: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.do(SelectGroup("Blue Moon"))
			if tt.duration != 0 {
				h.do(DurationChange("s1", tt.duration))
			}

			cmds := h.do(Seek("s1", tt.fraction))

			if tt.noop {
				assert.Empty(t, cmds)
				assert.Zero(t, h.state.Media["s1"].Position)
				return
			}
			assert.Equal(t, []render.Command{render.Seek("s1", tt.expected)}, cmds)
			assert.InDelta(t, tt.expected, h.state.Media["s1"].Position, 1e-9)
		})
	}
}

func TestTimeUpdate(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"))

	cmds := h.do(TimeUpdate("s1", 65))
	assert.Equal(t, []render.Command{render.SetProgress("s1", 0, "1:05")}, cmds,
		"unknown duration keeps the fill empty but still shows elapsed time")

	h.do(DurationChange("s1", 130))
	cmds = h.do(TimeUpdate("s1", 65))
	assert.Equal(t, []render.Command{render.SetProgress("s1", 0.5, "1:05")}, cmds)
	assert.Equal(t, 65.0, h.state.Media["s1"].Position)
}

func TestDurationChange(t *testing.T) {
	h := newHarness(t)

	cmds := h.do(DurationChange("s1", 245.9))
	assert.Equal(t, []render.Command{render.SetTotal("s1", "4:05")}, cmds)

	cmds = h.do(DurationChange("s1", math.Inf(1)))
	assert.Equal(t, []render.Command{render.SetTotal("s1", "0:00")}, cmds)
}

func TestEnded_WithoutPlaylist(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), TogglePlay("s1"), PlayStarted("s1"), TimeUpdate("s1", 30))

	cmds := h.do(Ended("s1"))

	assert.Equal(t, []render.Command{
		render.SetPlayState("s1", false),
		render.SetProgress("s1", 0, "0:00"),
		render.Seek("s1", 0),
	}, cmds)
	assert.False(t, h.state.IsPlaying("s1"))
	assert.Zero(t, h.state.Media["s1"].Position)
}

func TestPlaylist_AdvancesAndStopsAtEnd(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"))

	cmds := h.do(PlayAll())
	require.NotNil(t, h.state.Playlist)
	assert.Equal(t, 0, h.state.Playlist.Cursor())
	assert.Equal(t, 3, h.state.Playlist.Len())
	assert.Contains(t, cmds, render.Play("s1"))

	h.do(PlayStarted("s1"))
	cmds = h.do(Ended("s1"))
	assert.Contains(t, cmds, render.Play("s2"))
	assert.Equal(t, 1, h.state.Playlist.Cursor())
	assert.Equal(t, song.ID("s2"), h.state.Active)

	h.do(PlayStarted("s2"), Ended("s2"), PlayStarted("s3"))
	assert.Equal(t, 2, h.state.Playlist.Cursor())
	assert.True(t, h.state.Media["s3"].Playing)

	cmds = h.do(Ended("s3"))
	assert.Nil(t, h.state.Playlist, "playlist is cleared after its last entry")
	assert.Empty(t, h.state.Active)
	assert.Zero(t, h.state.PlayingCount())
	assert.NotContains(t, cmds, render.Play("s1"), "no wraparound to the first entry")
	assert.Contains(t, cmds, render.SetActive("s3", false))
}

func TestPlaylist_SkipsRecordsWithoutAudio(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Summertime"), PlayAll())

	require.NotNil(t, h.state.Playlist)
	assert.Equal(t, []song.ID{"s4"}, h.state.Playlist.Entries())
}

func TestPlaylist_NoAudioInGroupIsNoop(t *testing.T) {
	coord := NewCoordinator(group.Build([]song.Record{
		{ID: "v1", Group: "Video Only", VideoID: "x"},
	}), Config{})
	state, _ := coord.Init()
	state, _ = coord.Reduce(state, SelectGroup("Video Only"))

	state, cmds := coord.Reduce(state, PlayAll())

	assert.Empty(t, cmds)
	assert.Nil(t, state.Playlist)
}

func TestPlaylist_RestartReplacesState(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), PlayAll(), PlayStarted("s1"), Ended("s1"), PlayStarted("s2"))

	h.do(PlayAll())

	assert.Equal(t, 0, h.state.Playlist.Cursor())
	assert.Equal(t, song.ID("s1"), h.state.Active)
	assert.False(t, h.state.IsPlaying("s2"))
}

func TestPlaylist_ManualActivationMovesCursor(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), PlayAll(), PlayStarted("s1"))

	h.do(TogglePlay("s3"))
	assert.Equal(t, 2, h.state.Playlist.Cursor())

	// Ended of a record that is not the current entry does not advance
	h.do(Ended("s1"))
	assert.Equal(t, 2, h.state.Playlist.Cursor())
}

func TestPlaylist_EmbedClearsPlaylist(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), PlayAll(), PlayStarted("s1"))

	h.do(PlayVideo("s1"))

	assert.Nil(t, h.state.Playlist)
}

func TestPlayAll_InTitleListIsNoop(t *testing.T) {
	h := newHarness(t)
	assert.Empty(t, h.do(PlayAll()))
}

func TestBack_TearsDownAndReentryIsDeterministic(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), TogglePlay("s1"), PlayStarted("s1"), PlayAlternate("s2"))

	cmds := h.do(Back())

	assert.Equal(t, []render.Command{
		render.UnmountEmbed("s2"),
		render.SetActive("s2", false),
		render.Detach([]song.ID{"s1", "s2", "s3"}),
		render.SetVisible(render.RegionVersions, false),
		render.SetVisible(render.RegionPlayAll, false),
		render.SetVisible(render.RegionBackButton, false),
		render.SetLabel(""),
		render.SetVisible(render.RegionTitleList, true),
	}, cmds)
	assert.Equal(t, ViewTitleList, h.state.View)
	assert.Empty(t, h.state.Visible)
	assert.Empty(t, h.page.Attached)
	assert.Empty(t, h.page.Embeds)
	assert.Empty(t, h.page.Highlighted())

	h.do(SelectGroup("Blue Moon"))
	assert.Equal(t, []song.ID{"s1", "s2", "s3"}, h.state.Visible)
	assert.Empty(t, h.state.Active)
	assert.Zero(t, h.state.PlayingCount())
	assert.Zero(t, h.state.EmbedCount())
}

func TestBack_StopsPlaylistAndAudio(t *testing.T) {
	h := newHarness(t)
	h.do(SelectGroup("Blue Moon"), PlayAll(), PlayStarted("s1"))

	cmds := h.do(Back())

	assert.Equal(t, render.Pause("s1"), cmds[0])
	assert.Nil(t, h.state.Playlist)
	assert.Empty(t, h.page.RunningAudio())
}

func TestBack_InTitleListIsNoop(t *testing.T) {
	h := newHarness(t)
	assert.Empty(t, h.do(Back()))
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	coord := newTestCoordinator()
	s0, _ := coord.Init()
	s0, _ = coord.Reduce(s0, SelectGroup("Blue Moon"))
	s0, _ = coord.Reduce(s0, PlayAll())
	snapshot := s0.Clone()

	coord.Reduce(s0, PlayStarted("s1"))
	coord.Reduce(s0, Ended("s1"))
	coord.Reduce(s0, Back())

	assert.Equal(t, snapshot, s0)
}

func TestReduce_RandomSequencesKeepExclusivity(t *testing.T) {
	h := newHarness(t)
	rng := rand.New(rand.NewSource(19))
	ids := []song.ID{"s1", "s2", "s3", "s4", "s5", "missing"}
	groups := []string{"Blue Moon", "Summertime", "Unknown"}

	for i := 0; i < 2000; i++ {
		id := ids[rng.Intn(len(ids))]
		var ev Event
		switch rng.Intn(14) {
		case 0:
			ev = SelectGroup(groups[rng.Intn(len(groups))])
		case 1:
			ev = Back()
		case 2:
			ev = TogglePlay(id)
		case 3:
			ev = PlayVideo(id)
		case 4:
			ev = PlayAlternate(id)
		case 5:
			ev = Next(id)
		case 6:
			ev = Prev(id)
		case 7:
			ev = Seek(id, rng.Float64())
		case 8:
			ev = TimeUpdate(id, rng.Float64()*300)
		case 9:
			ev = DurationChange(id, rng.Float64()*300)
		case 10:
			ev = Ended(id)
		case 11:
			ev = PlayStarted(id)
		case 12:
			ev = PlayRejected(id, "policy")
		default:
			ev = PlayAll()
		}
		h.do(ev)

		if h.state.View == ViewTitleList {
			require.Empty(t, h.state.Visible)
			require.Empty(t, h.state.Active)
		}
		if h.state.Active != "" {
			require.Contains(t, h.state.Visible, h.state.Active)
		}
	}
}
