package dispatch

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/versionbox/internal/app/playback"
)

func init() {
	registerView("title", "Open the versions of a title group", func(a Action) (playback.Event, error) {
		if !a.HasGroup {
			return playback.Event{}, errors.Wrap(ErrMissingGroup, "control title")
		}
		return playback.SelectGroup(a.Group), nil
	})
	registerView("back", "Return to the title list", func(Action) (playback.Event, error) {
		return playback.Back(), nil
	})
	registerView("play-all", "Play every version of the open group in order", func(Action) (playback.Event, error) {
		return playback.PlayAll(), nil
	})

	// User controls on a version
	registerRecord("play-pause", "Toggle audio playback", func(a Action) playback.Event {
		return playback.TogglePlay(a.RecordID())
	})
	registerRecord("video", "Show the video embed", func(a Action) playback.Event {
		return playback.PlayVideo(a.RecordID())
	})
	registerRecord("embed", "Show the alternate embed", func(a Action) playback.Event {
		return playback.PlayAlternate(a.RecordID())
	})
	registerRecord("next", "Activate the next version", func(a Action) playback.Event {
		return playback.Next(a.RecordID())
	})
	registerRecord("prev", "Activate the previous version", func(a Action) playback.Event {
		return playback.Prev(a.RecordID())
	})
	registerRecord("seek", "Seek to a fraction of the track", func(a Action) playback.Event {
		return playback.Seek(a.RecordID(), a.Fraction)
	})

	// Media element notifications
	registerRecord("timeupdate", "Playback position changed", func(a Action) playback.Event {
		return playback.TimeUpdate(a.RecordID(), a.Position)
	})
	registerRecord("durationchange", "Track length became known", func(a Action) playback.Event {
		return playback.DurationChange(a.RecordID(), a.Duration)
	})
	registerRecord("ended", "Track finished", func(a Action) playback.Event {
		return playback.Ended(a.RecordID())
	})
	registerRecord("play-started", "Playback request resolved", func(a Action) playback.Event {
		return playback.PlayStarted(a.RecordID())
	})
	registerRecord("play-rejected", "Playback request refused", func(a Action) playback.Event {
		return playback.PlayRejected(a.RecordID(), a.Reason)
	})
}
