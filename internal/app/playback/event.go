package playback

import "github.com/osa030/versionbox/internal/domain/song"

// EventType represents an input event type.
type EventType int

const (
	EventSelectGroup    EventType = iota // Title chosen in the title list
	EventBack                            // Back to the title list
	EventTogglePlay                      // Play/pause control
	EventPlayVideo                       // Video control or cover art
	EventPlayAlternate                   // Alternate embed control
	EventNext                            // Next control
	EventPrev                            // Previous control
	EventSeek                            // Click on the progress track
	EventTimeUpdate                      // Playback time advanced
	EventDurationChange                  // Duration became known or changed
	EventEnded                           // Track finished naturally
	EventPlayStarted                     // Play request resolved
	EventPlayRejected                    // Play request rejected by the platform
	EventPlayAll                         // Play all visible versions
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventSelectGroup:
		return "select_group"
	case EventBack:
		return "back"
	case EventTogglePlay:
		return "toggle_play"
	case EventPlayVideo:
		return "play_video"
	case EventPlayAlternate:
		return "play_alternate"
	case EventNext:
		return "next"
	case EventPrev:
		return "prev"
	case EventSeek:
		return "seek"
	case EventTimeUpdate:
		return "time_update"
	case EventDurationChange:
		return "duration_change"
	case EventEnded:
		return "ended"
	case EventPlayStarted:
		return "play_started"
	case EventPlayRejected:
		return "play_rejected"
	case EventPlayAll:
		return "play_all"
	default:
		return "unknown"
	}
}

// Event represents an input to the coordinator.
type Event struct {
	Type     EventType
	Group    string  // EventSelectGroup
	Record   song.ID // Record-scoped events
	Fraction float64 // EventSeek: click offset / track width
	Position float64 // EventTimeUpdate: seconds
	Duration float64 // EventDurationChange: seconds
	Reason   string  // EventPlayRejected
}

func SelectGroup(group string) Event { return Event{Type: EventSelectGroup, Group: group} }
func Back() Event                    { return Event{Type: EventBack} }
func PlayAll() Event                 { return Event{Type: EventPlayAll} }
func TogglePlay(id song.ID) Event    { return Event{Type: EventTogglePlay, Record: id} }
func PlayVideo(id song.ID) Event     { return Event{Type: EventPlayVideo, Record: id} }
func PlayAlternate(id song.ID) Event { return Event{Type: EventPlayAlternate, Record: id} }
func Next(id song.ID) Event          { return Event{Type: EventNext, Record: id} }
func Prev(id song.ID) Event          { return Event{Type: EventPrev, Record: id} }
func Ended(id song.ID) Event         { return Event{Type: EventEnded, Record: id} }
func PlayStarted(id song.ID) Event   { return Event{Type: EventPlayStarted, Record: id} }

func Seek(id song.ID, fraction float64) Event {
	return Event{Type: EventSeek, Record: id, Fraction: fraction}
}

func TimeUpdate(id song.ID, position float64) Event {
	return Event{Type: EventTimeUpdate, Record: id, Position: position}
}

func DurationChange(id song.ID, duration float64) Event {
	return Event{Type: EventDurationChange, Record: id, Duration: duration}
}

func PlayRejected(id song.ID, reason string) Event {
	return Event{Type: EventPlayRejected, Record: id, Reason: reason}
}
