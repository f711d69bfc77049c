package ui

import (
	"github.com/osa030/versionbox/internal/app/render"
	"github.com/osa030/versionbox/internal/domain/song"
)

// Page is the render target of the terminal widget.
// Presentation changes land in the embedded page model; media requests also reach the engine.
type Page struct {
	*render.Recorder
	engine *Engine
}

var _ render.Renderer = (*Page)(nil)

// NewPage creates a page driving engine.
func NewPage(engine *Engine) *Page {
	return &Page{Recorder: render.NewRecorder(), engine: engine}
}

func (p *Page) Play(id song.ID) {
	p.Recorder.Play(id)
	p.engine.Play(id)
}

func (p *Page) Pause(id song.ID) {
	p.Recorder.Pause(id)
	p.engine.Pause(id)
}

func (p *Page) Seek(id song.ID, position float64) {
	p.Recorder.Seek(id, position)
	p.engine.Seek(id, position)
}

// ShowsVersions reports whether the versions view is on screen.
func (p *Page) ShowsVersions() bool {
	return p.Visible[render.RegionVersions]
}
