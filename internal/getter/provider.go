package getter

import (
	"context"

	"github.com/vmunix/sweepr/internal/plex"
)

//go:generate mockgen -source=provider.go -destination=mocks/mock_provider.go -package=mocks

// Provider is the metadata source the engine reads from. Implementations own
// transport, caching and rate limiting; the engine never retries.
type Provider interface {
	GetMetadata(ctx context.Context, ratingKey string) (*plex.MediaItem, error)
	GetChildrenMetadata(ctx context.Context, ratingKey string) ([]plex.MediaItem, error)
	GetWatchHistory(ctx context.Context, ratingKey string) ([]plex.WatchEvent, error)
	GetPlaylists(ctx context.Context, ratingKey string) ([]plex.Playlist, error)
	GetUsers(ctx context.Context) ([]plex.LocalUser, error)
	GetPlexTVUsers(ctx context.Context) ([]plex.RemoteIdentity, error)
	GetWatched(ctx context.Context, sectionID int, dataType plex.DataType) ([]plex.MediaItem, error)
}

// Ensure the Plex client implements Provider.
var _ Provider = (*plex.Client)(nil)
