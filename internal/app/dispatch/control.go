// Package dispatch routes widget interactions to playback events.
package dispatch

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/osa030/versionbox/internal/app/playback"
	"github.com/osa030/versionbox/internal/domain/song"
)

var (
	// ErrUnknownControl is returned for controls that are not registered.
	ErrUnknownControl = errors.New("unknown control")
	// ErrMissingRecord is returned when a record-scoped control carries no record.
	ErrMissingRecord = errors.New("record is required")
	// ErrMissingGroup is returned when a title selection carries no group key.
	ErrMissingGroup = errors.New("group is required")
	// ErrInvalidAction is returned when a payload cannot be decoded or validated.
	ErrInvalidAction = errors.New("invalid action")
)

// Action is one interaction as received from a widget surface.
type Action struct {
	Control  string  `mapstructure:"control" validate:"required"`
	Record   string  `mapstructure:"record" validate:"max=256"`
	Group    string  `mapstructure:"group" validate:"max=512"`
	Fraction float64 `mapstructure:"fraction"`
	Position float64 `mapstructure:"position"`
	Duration float64 `mapstructure:"duration"`
	Reason   string  `mapstructure:"reason" default:"unknown"`

	// HasGroup is set when the payload carries a group key, even an empty one.
	HasGroup bool `mapstructure:"-"`
}

// RecordID returns the action's record as a song ID.
func (a Action) RecordID() song.ID {
	return song.ID(a.Record)
}

// Control turns an action into a playback event.
type Control interface {
	// Name returns the wire name of the control.
	Name() string
	// Description returns a human-readable description.
	Description() string
	// RecordScoped reports whether the control acts on a single record.
	RecordScoped() bool
	// Event builds the playback event for the action.
	Event(a Action) (playback.Event, error)
}

// registry holds registered control factories.
var registry = make(map[string]func() Control)

// Register registers a control factory.
func Register(name string, factory func() Control) {
	registry[name] = factory
}

// Registered returns all registered control factories.
func Registered() map[string]func() Control {
	return registry
}

// Names returns the registered control names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// recordControl is a control acting on one record.
type recordControl struct {
	name        string
	description string
	build       func(a Action) playback.Event
}

func (c *recordControl) Name() string        { return c.name }
func (c *recordControl) Description() string { return c.description }
func (c *recordControl) RecordScoped() bool  { return true }

func (c *recordControl) Event(a Action) (playback.Event, error) {
	if a.Record == "" {
		return playback.Event{}, errors.Wrapf(ErrMissingRecord, "control %s", c.name)
	}
	return c.build(a), nil
}

// viewControl is a control acting on the view as a whole.
type viewControl struct {
	name        string
	description string
	build       func(a Action) (playback.Event, error)
}

func (c *viewControl) Name() string        { return c.name }
func (c *viewControl) Description() string { return c.description }
func (c *viewControl) RecordScoped() bool  { return false }

func (c *viewControl) Event(a Action) (playback.Event, error) {
	return c.build(a)
}

func registerRecord(name, description string, build func(a Action) playback.Event) {
	Register(name, func() Control {
		return &recordControl{name: name, description: description, build: build}
	})
}

func registerView(name, description string, build func(a Action) (playback.Event, error)) {
	Register(name, func() Control {
		return &viewControl{name: name, description: description, build: build}
	})
}
