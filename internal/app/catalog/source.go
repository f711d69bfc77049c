package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/versionbox/internal/domain/song"
	"github.com/osa030/versionbox/internal/infra/config"
	"github.com/osa030/versionbox/internal/infra/spotify"
)

// FromConfig loads the records of the configured catalog sources.
// A Spotify client is only created when a playlist is configured.
func FromConfig(ctx context.Context, cfg *config.Config) ([]song.Record, error) {
	var src PlaylistSource
	if url := cfg.Catalog.SpotifyPlaylist; url != "" {
		client, err := spotify.New(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			RefreshToken: cfg.Spotify.RefreshToken,
			Market:       cfg.Spotify.Market,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create spotify client")
		}

		zlog.Info().Msgf("catalog: validating playlist %s", url)
		if err := client.CheckPlaylistExists(ctx, url); err != nil {
			return nil, err
		}
		src = client
	}

	records, err := Load(ctx, cfg.Catalog.Path, cfg.Catalog.SpotifyPlaylist, src)
	if err != nil {
		return nil, err
	}
	zlog.Info().Msgf("catalog: loaded %d records", len(records))
	return records, nil
}
