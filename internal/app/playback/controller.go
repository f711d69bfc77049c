package playback

import (
	"context"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/versionbox/internal/app/render"
	"github.com/osa030/versionbox/internal/domain/song"
)

// DefaultUpdateBuffer is the update channel capacity used when none is configured.
const DefaultUpdateBuffer = 16

// Update describes the outcome of one handled event.
type Update struct {
	Seq      uint64
	Event    Event
	Commands []render.Command
	View     View
	Active   song.ID
}

// Controller holds the widget state and drives a renderer.
// Renderers are called with the controller lock held and must not call back into it.
type Controller struct {
	mu sync.Mutex

	coord    *Coordinator
	state    State
	initial  []render.Command
	renderer render.Renderer
	seq      uint64

	// Updates
	updateCh chan Update
	closed   bool

	// Context
	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a controller in the initial title list state.
func NewController(coord *Coordinator, renderer render.Renderer, updateBuffer int) *Controller {
	if updateBuffer <= 0 {
		updateBuffer = DefaultUpdateBuffer
	}

	ctx, cancel := context.WithCancel(context.Background())
	state, initial := coord.Init()
	return &Controller{
		coord:    coord,
		state:    state,
		initial:  initial,
		renderer: renderer,
		updateCh: make(chan Update, updateBuffer),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start renders the initial state and returns its commands.
func (c *Controller) Start() []render.Command {
	c.mu.Lock()
	defer c.mu.Unlock()

	render.Apply(c.renderer, c.initial)
	return c.initial
}

// Handle applies an event, renders the resulting commands and returns them.
func (c *Controller) Handle(ev Event) []render.Command {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state.Media[ev.Record]
	next, cmds := c.coord.Reduce(c.state, ev)
	c.state = next
	render.Apply(c.renderer, cmds)

	if ev.Type == EventPlayRejected {
		if prev.Pending || prev.Playing {
			zlog.Warn().Str("record", string(ev.Record)).Msgf("playback: play request rejected: %s", ev.Reason)
		} else {
			zlog.Debug().Str("record", string(ev.Record)).Msgf("playback: stale play rejection ignored: %s", ev.Reason)
		}
	}

	if n := next.PlayingCount(); n > 1 {
		zlog.Error().Msgf("playback: %d audio sources active after %s", n, ev.Type)
	}
	zlog.Debug().Msgf("playback: event=%s record=%s commands=%d view=%s active=%s",
		ev.Type, ev.Record, len(cmds), next.View, next.Active)

	c.seq++
	c.sendUpdateLocked(Update{
		Seq:      c.seq,
		Event:    ev,
		Commands: cmds,
		View:     next.View,
		Active:   next.Active,
	})

	return cmds
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Coordinator returns the coordinator driving this controller.
func (c *Controller) Coordinator() *Coordinator {
	return c.coord
}

// Updates returns the update channel.
func (c *Controller) Updates() <-chan Update {
	return c.updateCh
}

// Close releases the controller. Further events are still reduced but no updates are sent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	close(c.updateCh)
}

// sendUpdateLocked sends an update without blocking.
// Must be called with lock held.
func (c *Controller) sendUpdateLocked(u Update) {
	if c.closed {
		return
	}
	select {
	case c.updateCh <- u:
	case <-c.ctx.Done():
	default:
		// Channel full, drop update; subscribers resync from State.
		zlog.Debug().Msgf("playback: update %d dropped", u.Seq)
	}
}
