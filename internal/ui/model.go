package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/versionbox/internal/app/playback"
	"github.com/osa030/versionbox/internal/domain/song"
)

// DefaultTick is the media clock resolution.
const DefaultTick = 250 * time.Millisecond

const (
	seekStep = 0.1
	// maxDrain bounds engine feedback handled per input.
	maxDrain = 64
)

// Options configures a Model.
type Options struct {
	Tick         time.Duration
	TrackLength  time.Duration
	UpdateBuffer int
}

type tickMsg time.Time

type updateMsg playback.Update

// Model is the terminal widget.
type Model struct {
	ctrl   *playback.Controller
	page   *Page
	engine *Engine

	cursor int
	tick   time.Duration
	seq    uint64
	last   string
	width  int

	bar  progress.Model
	help help.Model
	keys keyMap
}

// NewModel creates a widget over coord and renders its initial state.
func NewModel(coord *playback.Coordinator, opts Options) *Model {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}

	engine := NewEngine(coord.Record, opts.TrackLength)
	page := NewPage(engine)
	ctrl := playback.NewController(coord, page, opts.UpdateBuffer)
	ctrl.Start()

	return &Model{
		ctrl:   ctrl,
		page:   page,
		engine: engine,
		tick:   opts.Tick,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(24), progress.WithoutPercentage()),
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Page returns the render target.
func (m *Model) Page() *Page {
	return m.page
}

// State returns a copy of the widget state.
func (m *Model) State() playback.State {
	return m.ctrl.State()
}

// Init starts the media clock and the update feed.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.nextTick(), m.waitForUpdate())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.Advance(m.tick)
		return m, m.nextTick()

	case updateMsg:
		m.seq = msg.Seq
		m.last = msg.Event.Type.String()
		return m, m.waitForUpdate()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// Advance moves the media clock forward by d.
func (m *Model) Advance(d time.Duration) {
	m.engine.Advance(d)
	m.drain()
	m.syncCursor()
}

// Dispatch hands an event to the controller and resolves the media feedback it causes.
func (m *Model) Dispatch(ev playback.Event) {
	m.ctrl.Handle(ev)
	m.drain()
	m.syncCursor()
}

func (m *Model) drain() {
	for i := 0; i < maxDrain; i++ {
		events := m.engine.Drain()
		if len(events) == 0 {
			break
		}
		for _, ev := range events {
			m.ctrl.Handle(ev)
		}
	}
	m.page.Reset()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.ctrl.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.back):
		if m.page.ShowsVersions() {
			m.Dispatch(playback.Back())
			m.cursor = 0
		}
	case key.Matches(msg, m.keys.enter):
		if !m.page.ShowsVersions() {
			if title, ok := m.selectedTitle(); ok {
				m.cursor = 0
				m.Dispatch(playback.SelectGroup(title))
			}
			return m, nil
		}
		m.dispatchSelected(playback.TogglePlay)
	case key.Matches(msg, m.keys.toggle):
		m.dispatchSelected(playback.TogglePlay)
	case key.Matches(msg, m.keys.video):
		m.dispatchSelected(playback.PlayVideo)
	case key.Matches(msg, m.keys.alternate):
		m.dispatchSelected(playback.PlayAlternate)
	case key.Matches(msg, m.keys.next):
		m.dispatchSelected(playback.Next)
	case key.Matches(msg, m.keys.prev):
		m.dispatchSelected(playback.Prev)
	case key.Matches(msg, m.keys.playAll):
		if m.page.ShowsVersions() {
			m.Dispatch(playback.PlayAll())
		}
	case key.Matches(msg, m.keys.rewind):
		m.seekSelected(-seekStep)
	case key.Matches(msg, m.keys.forward):
		m.seekSelected(seekStep)
	}
	return m, nil
}

func (m *Model) dispatchSelected(event func(song.ID) playback.Event) {
	if id, ok := m.selectedRecord(); ok {
		m.Dispatch(event(id))
	}
}

func (m *Model) seekSelected(delta float64) {
	id, ok := m.selectedRecord()
	if !ok {
		return
	}
	m.Dispatch(playback.Seek(id, m.page.Progress[id].Fraction+delta))
}

func (m *Model) items() int {
	if m.page.ShowsVersions() {
		return len(m.page.Attached)
	}
	return len(m.page.Titles)
}

func (m *Model) moveCursor(delta int) {
	n := m.items()
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = (m.cursor + delta + n) % n
}

func (m *Model) selectedTitle() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.page.Titles) {
		return "", false
	}
	return m.page.Titles[m.cursor], true
}

func (m *Model) selectedRecord() (song.ID, bool) {
	if !m.page.ShowsVersions() || m.cursor < 0 || m.cursor >= len(m.page.Attached) {
		return "", false
	}
	return m.page.Attached[m.cursor], true
}

// syncCursor follows the active record, which moves on next, previous and playlist advance.
func (m *Model) syncCursor() {
	active := m.ctrl.State().Active
	if active == "" {
		return
	}
	if i := slices.Index(m.page.Attached, active); i >= 0 {
		m.cursor = i
	}
}

func (m *Model) nextTick() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) waitForUpdate() tea.Cmd {
	updates := m.ctrl.Updates()
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		return updateMsg(u)
	}
}

// View renders the page.
func (m *Model) View() string {
	var b strings.Builder

	if m.page.ShowsVersions() {
		m.renderVersions(&b)
	} else {
		m.renderTitles(&b)
	}

	if m.seq > 0 {
		b.WriteString(styles.muted.Render(fmt.Sprintf("#%d %s", m.seq, m.last)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderTitles(b *strings.Builder) {
	b.WriteString(styles.title.Render("Titles"))
	b.WriteString("\n")
	if len(m.page.Titles) == 0 {
		b.WriteString(styles.muted.Render("no songs in catalog"))
		b.WriteString("\n")
	}
	for i, title := range m.page.Titles {
		b.WriteString(m.line(i, groupLabel(title)))
	}
}

// groupLabel names the bucket of records that carry no group.
func groupLabel(title string) string {
	if title == "" {
		return "(untitled)"
	}
	return title
}

func (m *Model) renderVersions(b *strings.Builder) {
	b.WriteString(styles.title.Render(groupLabel(m.page.Label)))
	b.WriteString("\n")
	if pl := m.ctrl.State().Playlist; pl.Active() {
		b.WriteString(styles.muted.Render(fmt.Sprintf("playing all %d/%d", pl.Cursor()+1, pl.Len())))
		b.WriteString("\n")
	}

	coord := m.ctrl.Coordinator()
	for i, id := range m.page.Attached {
		rec, ok := coord.Record(id)
		if !ok {
			zlog.Warn().Msgf("ui: attached record %s not in catalog", id)
			continue
		}

		indicator := "▶"
		if m.page.Playing[id] {
			indicator = "❚❚"
		}
		name := fmt.Sprintf("%s %s", indicator, rec.DisplayTitle())
		if m.page.Active[id] {
			name = styles.active.Render(name)
		}
		b.WriteString(m.line(i, name))

		if embed, ok := m.page.Embeds[id]; ok {
			b.WriteString("    ")
			b.WriteString(styles.embed.Render(fmt.Sprintf("[%s] %s", embed.Kind, embed.URL)))
			b.WriteString("\n")
			continue
		}

		p := m.page.Progress[id]
		elapsed := p.Elapsed
		if elapsed == "" {
			elapsed = playback.FormatTime(0)
		}
		total := m.page.Total[id]
		if total == "" {
			total = playback.FormatTime(0)
		}
		fmt.Fprintf(b, "    %s %s / %s\n", m.bar.ViewAs(p.Fraction), elapsed, total)
	}
}

func (m *Model) line(i int, text string) string {
	if i == m.cursor {
		return styles.cursor.Render("> ") + text + "\n"
	}
	return "  " + text + "\n"
}
