// Package render describes presentation changes as commands and applies them to adapters.
package render

import (
	"github.com/samber/lo"

	"github.com/osa030/versionbox/internal/domain/song"
)

// Op represents a render command operation.
type Op int

const (
	OpSetVisible   Op = iota // Show or hide a page region
	OpSetLabel               // Set the current group title label
	OpListTitles             // Populate the title list
	OpAttach                 // Move records into the detail container
	OpDetach                 // Remove records from the detail container
	OpMountEmbed             // Replace cover art with an embed
	OpUnmountEmbed           // Remove an embed and restore cover art
	OpSetPlayState           // Toggle play/pause indicator
	OpSetProgress            // Update progress fill and elapsed label
	OpSetTotal               // Update total time label
	OpSetActive              // Apply or remove active highlight
	OpPlay                   // Request audio playback start
	OpPause                  // Pause audio playback
	OpSeek                   // Move audio playback position
)

// String returns the string representation of the op.
func (o Op) String() string {
	switch o {
	case OpSetVisible:
		return "set_visible"
	case OpSetLabel:
		return "set_label"
	case OpListTitles:
		return "list_titles"
	case OpAttach:
		return "attach"
	case OpDetach:
		return "detach"
	case OpMountEmbed:
		return "mount_embed"
	case OpUnmountEmbed:
		return "unmount_embed"
	case OpSetPlayState:
		return "set_play_state"
	case OpSetProgress:
		return "set_progress"
	case OpSetTotal:
		return "set_total"
	case OpSetActive:
		return "set_active"
	case OpPlay:
		return "play"
	case OpPause:
		return "pause"
	case OpSeek:
		return "seek"
	default:
		return "unknown"
	}
}

// Region identifies a page-level element toggled by SetVisible.
type Region string

const (
	RegionTitleList  Region = "title-list"
	RegionVersions   Region = "versions"
	RegionBackButton Region = "back-button"
	RegionPlayAll    Region = "play-all-button"
)

// Command is a single presentation change.
// Only the fields relevant to Op are set.
type Command struct {
	Op       Op
	Record   song.ID
	Region   Region
	Visible  bool
	Kind     song.MediaKind
	URL      string
	Fraction float64
	Position float64
	Text     string
	Playing  bool
	Active   bool
	Records  []song.ID
	Titles   []string
}

func SetVisible(region Region, visible bool) Command {
	return Command{Op: OpSetVisible, Region: region, Visible: visible}
}

func SetLabel(text string) Command {
	return Command{Op: OpSetLabel, Text: text}
}

func ListTitles(titles []string) Command {
	return Command{Op: OpListTitles, Titles: titles}
}

func Attach(ids []song.ID) Command {
	return Command{Op: OpAttach, Records: ids}
}

func Detach(ids []song.ID) Command {
	return Command{Op: OpDetach, Records: ids}
}

func MountEmbed(id song.ID, kind song.MediaKind, url string) Command {
	return Command{Op: OpMountEmbed, Record: id, Kind: kind, URL: url}
}

func UnmountEmbed(id song.ID) Command {
	return Command{Op: OpUnmountEmbed, Record: id}
}

func SetPlayState(id song.ID, playing bool) Command {
	return Command{Op: OpSetPlayState, Record: id, Playing: playing}
}

// SetProgress carries the fill fraction and the formatted elapsed label.
func SetProgress(id song.ID, fraction float64, elapsed string) Command {
	return Command{Op: OpSetProgress, Record: id, Fraction: fraction, Text: elapsed}
}

func SetTotal(id song.ID, total string) Command {
	return Command{Op: OpSetTotal, Record: id, Text: total}
}

func SetActive(id song.ID, active bool) Command {
	return Command{Op: OpSetActive, Record: id, Active: active}
}

func Play(id song.ID) Command {
	return Command{Op: OpPlay, Record: id}
}

func Pause(id song.ID) Command {
	return Command{Op: OpPause, Record: id}
}

func Seek(id song.ID, position float64) Command {
	return Command{Op: OpSeek, Record: id, Position: position}
}

// Fields returns the wire form of the command.
func (c Command) Fields() map[string]any {
	f := map[string]any{"op": c.Op.String()}
	if c.Record != "" {
		f["record"] = string(c.Record)
	}

	switch c.Op {
	case OpSetVisible:
		f["region"] = string(c.Region)
		f["visible"] = c.Visible
	case OpSetLabel, OpSetTotal:
		f["text"] = c.Text
	case OpListTitles:
		f["titles"] = lo.Map(c.Titles, func(t string, _ int) any { return t })
	case OpAttach, OpDetach:
		f["records"] = lo.Map(c.Records, func(id song.ID, _ int) any { return string(id) })
	case OpMountEmbed:
		f["kind"] = c.Kind.String()
		f["url"] = c.URL
	case OpSetPlayState:
		f["playing"] = c.Playing
	case OpSetProgress:
		f["fraction"] = c.Fraction
		f["text"] = c.Text
	case OpSetActive:
		f["active"] = c.Active
	case OpSeek:
		f["position"] = c.Position
	}
	return f
}

// Wire returns the wire form of a command batch.
func Wire(cmds []Command) []any {
	return lo.Map(cmds, func(c Command, _ int) any { return c.Fields() })
}
