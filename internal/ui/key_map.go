package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the widget.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	toggle    key.Binding
	video     key.Binding
	alternate key.Binding
	next      key.Binding
	prev      key.Binding
	playAll   key.Binding
	rewind    key.Binding
	forward   key.Binding
	back      key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		video:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "video")),
		alternate: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "embed")),
		next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev")),
		playAll:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "play all")),
		rewind:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "seek -10%")),
		forward:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "seek +10%")),
		back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.back, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.toggle, k.video, k.alternate, k.playAll},
		{k.next, k.prev, k.rewind, k.forward},
		{k.help, k.quit},
	}
}
