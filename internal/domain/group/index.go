// Package group provides the index of song records by group title.
package group

import (
	"github.com/samber/lo"

	"github.com/osa030/versionbox/internal/domain/song"
)

// Index maps group titles to their ordered versions.
// Group order and version order follow first appearance in the input.
type Index struct {
	titles   []string
	versions map[string][]song.Record
	records  []song.Record
	byID     map[song.ID]song.Record
}

// Build partitions records by group title.
// An empty group title is a bucket of its own.
func Build(records []song.Record) *Index {
	titles := lo.Uniq(lo.Map(records, func(r song.Record, _ int) string {
		return r.Group
	}))
	versions := lo.GroupBy(records, func(r song.Record) string {
		return r.Group
	})

	all := make([]song.Record, len(records))
	copy(all, records)

	return &Index{
		titles:   titles,
		versions: versions,
		records:  all,
		byID: lo.SliceToMap(all, func(r song.Record) (song.ID, song.Record) {
			return r.ID, r
		}),
	}
}

// Titles returns the group titles in first-seen order.
func (i *Index) Titles() []string {
	result := make([]string, len(i.titles))
	copy(result, i.titles)
	return result
}

// Versions returns the records of a group in insertion order.
// Unknown groups yield an empty slice.
func (i *Index) Versions(title string) []song.Record {
	versions, ok := i.versions[title]
	if !ok {
		return []song.Record{}
	}
	result := make([]song.Record, len(versions))
	copy(result, versions)
	return result
}

// VersionIDs returns the record IDs of a group in insertion order.
func (i *Index) VersionIDs(title string) []song.ID {
	return lo.Map(i.versions[title], func(r song.Record, _ int) song.ID {
		return r.ID
	})
}

// Len returns the number of groups.
func (i *Index) Len() int {
	return len(i.titles)
}

// Records returns every record in input order.
func (i *Index) Records() []song.Record {
	result := make([]song.Record, len(i.records))
	copy(result, i.records)
	return result
}

// Lookup returns the record with the given ID.
func (i *Index) Lookup(id song.ID) (song.Record, bool) {
	r, ok := i.byID[id]
	return r, ok
}
