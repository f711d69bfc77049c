// Package ui implements a terminal front end for the song versions widget.
//
// The [Model] is a bubbletea program that owns a playback controller. Its
// [Page] is the render target and its [Engine] stands in for the media
// element: play requests resolve on the next tick and progress is reported
// back to the controller as time updates.
package ui
