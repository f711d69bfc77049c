package render

import (
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/versionbox/internal/domain/song"
)

// Renderer is implemented by the adapter layer of a UI framework.
// The media methods drive the audio element owned by the adapter.
type Renderer interface {
	SetVisible(region Region, visible bool)
	SetLabel(text string)
	ListTitles(titles []string)
	Attach(ids []song.ID)
	Detach(ids []song.ID)
	MountEmbed(id song.ID, kind song.MediaKind, url string)
	UnmountEmbed(id song.ID)
	SetPlayState(id song.ID, playing bool)
	SetProgress(id song.ID, fraction float64, elapsed string)
	SetTotal(id song.ID, total string)
	SetActiveHighlight(id song.ID, active bool)

	Play(id song.ID)
	Pause(id song.ID)
	Seek(id song.ID, position float64)
}

// Apply hands commands to the renderer in order.
func Apply(r Renderer, cmds []Command) {
	if r == nil {
		return
	}
	for _, c := range cmds {
		switch c.Op {
		case OpSetVisible:
			r.SetVisible(c.Region, c.Visible)
		case OpSetLabel:
			r.SetLabel(c.Text)
		case OpListTitles:
			r.ListTitles(c.Titles)
		case OpAttach:
			r.Attach(c.Records)
		case OpDetach:
			r.Detach(c.Records)
		case OpMountEmbed:
			r.MountEmbed(c.Record, c.Kind, c.URL)
		case OpUnmountEmbed:
			r.UnmountEmbed(c.Record)
		case OpSetPlayState:
			r.SetPlayState(c.Record, c.Playing)
		case OpSetProgress:
			r.SetProgress(c.Record, c.Fraction, c.Text)
		case OpSetTotal:
			r.SetTotal(c.Record, c.Text)
		case OpSetActive:
			r.SetActiveHighlight(c.Record, c.Active)
		case OpPlay:
			r.Play(c.Record)
		case OpPause:
			r.Pause(c.Record)
		case OpSeek:
			r.Seek(c.Record, c.Position)
		default:
			zlog.Warn().Msgf("render: unknown op %d", c.Op)
		}
	}
}

// LogRenderer writes every presentation change to the debug log.
// Used where the real page lives on the other side of a transport.
type LogRenderer struct {
	Session string
}

var _ Renderer = LogRenderer{}

func (l LogRenderer) log(op Op, id song.ID) {
	zlog.Debug().Str("session", l.Session).Str("record", string(id)).Msgf("render: %s", op)
}

func (l LogRenderer) SetVisible(region Region, visible bool) {
	zlog.Debug().Str("session", l.Session).Msgf("render: %s region=%s visible=%t", OpSetVisible, region, visible)
}

func (l LogRenderer) SetLabel(text string) {
	zlog.Debug().Str("session", l.Session).Msgf("render: %s text=%q", OpSetLabel, text)
}

func (l LogRenderer) ListTitles(titles []string) {
	zlog.Debug().Str("session", l.Session).Msgf("render: %s count=%d", OpListTitles, len(titles))
}

func (l LogRenderer) Attach(ids []song.ID) {
	zlog.Debug().Str("session", l.Session).Msgf("render: %s count=%d", OpAttach, len(ids))
}

func (l LogRenderer) Detach(ids []song.ID) {
	zlog.Debug().Str("session", l.Session).Msgf("render: %s count=%d", OpDetach, len(ids))
}

func (l LogRenderer) MountEmbed(id song.ID, kind song.MediaKind, url string) {
	zlog.Debug().Str("session", l.Session).Str("record", string(id)).
		Msgf("render: %s kind=%s url=%s", OpMountEmbed, kind, url)
}

func (l LogRenderer) UnmountEmbed(id song.ID) { l.log(OpUnmountEmbed, id) }

func (l LogRenderer) SetPlayState(id song.ID, playing bool) {
	zlog.Debug().Str("session", l.Session).Str("record", string(id)).
		Msgf("render: %s playing=%t", OpSetPlayState, playing)
}

// SetProgress is not logged; time updates arrive several times per second.
func (l LogRenderer) SetProgress(song.ID, float64, string) {}

func (l LogRenderer) SetTotal(id song.ID, total string) {
	zlog.Debug().Str("session", l.Session).Str("record", string(id)).
		Msgf("render: %s total=%s", OpSetTotal, total)
}

func (l LogRenderer) SetActiveHighlight(id song.ID, active bool) {
	zlog.Debug().Str("session", l.Session).Str("record", string(id)).
		Msgf("render: %s active=%t", OpSetActive, active)
}

func (l LogRenderer) Play(id song.ID)  { l.log(OpPlay, id) }
func (l LogRenderer) Pause(id song.ID) { l.log(OpPause, id) }

func (l LogRenderer) Seek(id song.ID, position float64) {
	zlog.Debug().Str("session", l.Session).Str("record", string(id)).
		Msgf("render: %s position=%.2f", OpSeek, position)
}
