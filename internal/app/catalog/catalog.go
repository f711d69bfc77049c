// Package catalog loads song records from markup, catalog files and streaming playlists.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/versionbox/internal/domain/song"
)

var (
	// ErrUnsupportedFormat is returned for catalog files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
	// ErrDuplicateID is returned when two records share an identifier.
	ErrDuplicateID = errors.New("duplicate record id")
	// ErrEmpty is returned when no source is configured.
	ErrEmpty = errors.New("no catalog source configured")
)

// PlaylistSource fetches song records from a streaming playlist.
type PlaylistSource interface {
	GetPlaylistRecords(ctx context.Context, playlistURL string) ([]song.Record, error)
}

// LoadFile reads records from a file, choosing the decoder by extension.
func LoadFile(path string) ([]song.Record, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".html", ".htm", ".yaml", ".yml", ".toml":
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open catalog")
	}
	defer f.Close()

	var records []song.Record
	switch ext {
	case ".html", ".htm":
		records, err = ParseMarkup(f)
	case ".toml":
		records, err = DecodeTOML(f)
	default:
		records, err = DecodeYAML(f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load catalog %s", path)
	}

	zlog.Info().Msgf("catalog: loaded %d records from %s", len(records), path)
	return records, nil
}

// Load gathers records from a catalog file and a streaming playlist.
// Either source may be empty, but not both.
func Load(ctx context.Context, path, playlistURL string, src PlaylistSource) ([]song.Record, error) {
	if path == "" && playlistURL == "" {
		return nil, ErrEmpty
	}

	var records []song.Record
	if path != "" {
		fromFile, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, fromFile...)
	}

	if playlistURL != "" {
		if src == nil {
			return nil, errors.New("playlist configured without a playlist source")
		}
		fromPlaylist, err := FromPlaylist(ctx, src, playlistURL)
		if err != nil {
			return nil, err
		}
		records = append(records, fromPlaylist...)
	}

	if err := checkUnique(records); err != nil {
		return nil, err
	}
	return records, nil
}

// FromPlaylist fetches playlist tracks and groups alternate versions of one title together.
func FromPlaylist(ctx context.Context, src PlaylistSource, playlistURL string) ([]song.Record, error) {
	records, err := src.GetPlaylistRecords(ctx, playlistURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch playlist records")
	}

	for i := range records {
		if records[i].Title == "" {
			records[i].Title = records[i].Group
		}
		records[i].Group = NormalizeTitle(records[i].Group)
		if !records[i].HasAudio() {
			zlog.Debug().Msgf("catalog: playlist track %s has no preview audio", records[i].ID)
		}
	}

	zlog.Info().Msgf("catalog: loaded %d records from playlist", len(records))
	return records, nil
}

// finalize assigns positional ids and rejects duplicate ids.
// Records without a group are kept and share the empty group bucket.
func finalize(records []song.Record) ([]song.Record, error) {
	out := make([]song.Record, 0, len(records))
	for i, r := range records {
		if r.ID == "" {
			r.ID = song.ID(fmt.Sprintf("song-%d", i+1))
		}
		r.Group = strings.TrimSpace(r.Group)
		if r.Group == "" {
			zlog.Debug().Msgf("catalog: record %s has no title group", r.ID)
		}
		out = append(out, r)
	}

	if err := checkUnique(out); err != nil {
		return nil, err
	}
	return out, nil
}

func checkUnique(records []song.Record) error {
	seen := make(map[song.ID]bool, len(records))
	for _, r := range records {
		if seen[r.ID] {
			return errors.Wrapf(ErrDuplicateID, "%s", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}
