package dispatch

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/versionbox/internal/app/playback"
	"github.com/osa030/versionbox/internal/app/render"
)

// Handler consumes playback events.
type Handler interface {
	Handle(ev playback.Event) []render.Command
}

// Dispatcher decodes actions and forwards the resulting events to a handler.
// Controls are looked up by name, so view changes never rewire anything.
type Dispatcher struct {
	handler  Handler
	controls map[string]Control
	validate *validator.Validate
}

// New creates a dispatcher over every registered control.
func New(handler Handler) *Dispatcher {
	controls := make(map[string]Control, len(registry))
	for name, factory := range Registered() {
		controls[name] = factory()
	}
	return &Dispatcher{
		handler:  handler,
		controls: controls,
		validate: validator.New(),
	}
}

// Decode turns a loosely typed payload into a validated action.
func (d *Dispatcher) Decode(payload map[string]any) (Action, error) {
	var action Action

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &action,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Action{}, errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(payload); err != nil {
		return Action{}, errors.Mark(errors.Wrap(err, "failed to decode action"), ErrInvalidAction)
	}
	if err := defaults.Set(&action); err != nil {
		return Action{}, errors.Wrap(err, "failed to set defaults")
	}
	if err := d.validate.Struct(action); err != nil {
		return Action{}, errors.Mark(errors.Wrap(err, "action validation failed"), ErrInvalidAction)
	}
	_, action.HasGroup = payload["group"]
	return action, nil
}

// Event maps an action to its playback event.
func (d *Dispatcher) Event(a Action) (playback.Event, error) {
	c, ok := d.controls[a.Control]
	if !ok {
		return playback.Event{}, errors.Wrapf(ErrUnknownControl, "control %q", a.Control)
	}
	return c.Event(a)
}

// Dispatch decodes a payload, maps it to an event and hands it to the handler.
func (d *Dispatcher) Dispatch(payload map[string]any) (Action, []render.Command, error) {
	action, err := d.Decode(payload)
	if err != nil {
		return Action{}, nil, err
	}
	cmds, err := d.DispatchAction(action)
	return action, cmds, err
}

// DispatchAction maps an already decoded action and hands it to the handler.
func (d *Dispatcher) DispatchAction(a Action) ([]render.Command, error) {
	ev, err := d.Event(a)
	if err != nil {
		zlog.Debug().Msgf("dispatch: rejected action control=%s record=%s: %v", a.Control, a.Record, err)
		return nil, err
	}
	return d.handler.Handle(ev), nil
}
