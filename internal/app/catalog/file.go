package catalog

import (
	"io"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/versionbox/internal/domain/song"
)

// File is the catalog file layout shared by YAML and TOML.
type File struct {
	Songs []Entry `yaml:"songs" toml:"songs" validate:"dive"`
}

// Entry is one song of a catalog file.
type Entry struct {
	ID          string  `yaml:"id" toml:"id"`
	Group       string  `yaml:"group" toml:"group"`
	Title       string  `yaml:"title" toml:"title"`
	Audio       string  `yaml:"audio" toml:"audio"`
	VideoID     string  `yaml:"video_id" toml:"video_id"`
	EmbedURL    string  `yaml:"embed_url" toml:"embed_url"`
	Cover       string  `yaml:"cover" toml:"cover"`
	DurationSec float64 `yaml:"duration_sec" toml:"duration_sec" validate:"gte=0"`
}

// Record converts the entry to a song record.
func (e Entry) Record() song.Record {
	return song.Record{
		ID:       song.ID(e.ID),
		Group:    e.Group,
		Title:    e.Title,
		AudioURL: e.Audio,
		VideoID:  e.VideoID,
		EmbedURL: e.EmbedURL,
		CoverURL: e.Cover,
		Duration: time.Duration(e.DurationSec * float64(time.Second)),
	}
}

// DecodeYAML reads a YAML catalog.
func DecodeYAML(r io.Reader) ([]song.Record, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to parse yaml catalog")
	}
	return f.records()
}

// DecodeTOML reads a TOML catalog.
func DecodeTOML(r io.Reader) ([]song.Record, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "failed to parse toml catalog")
	}
	return f.records()
}

func (f File) records() ([]song.Record, error) {
	if err := validator.New().Struct(f); err != nil {
		return nil, errors.Wrap(err, "catalog validation failed")
	}

	records := make([]song.Record, 0, len(f.Songs))
	for _, e := range f.Songs {
		records = append(records, e.Record())
	}
	return finalize(records)
}
