package plex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

// watchedPageSize is the container size used when paging section listings.
const watchedPageSize = 500

type metadataResponse struct {
	MediaContainer struct {
		Size      int         `json:"size"`
		TotalSize int         `json:"totalSize"`
		Metadata  []MediaItem `json:"Metadata"`
	} `json:"MediaContainer"`
}

type historyResponse struct {
	MediaContainer struct {
		Size     int          `json:"size"`
		Metadata []WatchEvent `json:"Metadata"`
	} `json:"MediaContainer"`
}

type playlistsResponse struct {
	MediaContainer struct {
		Size     int        `json:"size"`
		Metadata []Playlist `json:"Metadata"`
	} `json:"MediaContainer"`
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.getServer(ctx, path, query)
	if err != nil {
		return err
	}
	return decodeJSON(body, out)
}

// getItemJSON serves an item-scoped lookup from the cache when possible and
// stores the response once it decodes.
func (c *Client) getItemJSON(ctx context.Context, kind CacheKind, ratingKey, path string, out any) error {
	if c.cache != nil {
		if body, ok := c.cache.Lookup(ctx, kind, ratingKey); ok {
			if err := decodeJSON(body, out); err == nil {
				c.log.Debug("cache hit", "kind", kind, "rating_key", ratingKey)
				return nil
			}
		}
	}

	body, err := c.getServer(ctx, path, nil)
	if err != nil {
		return err
	}
	if err := decodeJSON(body, out); err != nil {
		return err
	}

	if c.cache != nil {
		if err := c.cache.Store(ctx, kind, ratingKey, body, c.cacheTTL); err != nil {
			c.log.Warn("failed to cache response", "kind", kind, "rating_key", ratingKey, "error", err)
		}
	}
	return nil
}

func decodeJSON(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetMetadata returns the full metadata of a single item.
func (c *Client) GetMetadata(ctx context.Context, ratingKey string) (*MediaItem, error) {
	var result metadataResponse
	if err := c.getItemJSON(ctx, CacheMetadata, ratingKey, "/library/metadata/"+url.PathEscape(ratingKey), &result); err != nil {
		return nil, fmt.Errorf("get metadata %s: %w", ratingKey, err)
	}
	if len(result.MediaContainer.Metadata) == 0 {
		return nil, fmt.Errorf("get metadata %s: %w", ratingKey, ErrNotFound)
	}
	return &result.MediaContainer.Metadata[0], nil
}

// GetChildrenMetadata returns the direct children of an item
// (seasons of a show, episodes of a season).
func (c *Client) GetChildrenMetadata(ctx context.Context, ratingKey string) ([]MediaItem, error) {
	var result metadataResponse
	if err := c.getItemJSON(ctx, CacheChildren, ratingKey, "/library/metadata/"+url.PathEscape(ratingKey)+"/children", &result); err != nil {
		return nil, fmt.Errorf("get children %s: %w", ratingKey, err)
	}
	return result.MediaContainer.Metadata, nil
}

// GetWatchHistory returns every recorded view of an item, newest first.
func (c *Client) GetWatchHistory(ctx context.Context, ratingKey string) ([]WatchEvent, error) {
	query := url.Values{}
	query.Set("sort", "viewedAt:desc")
	query.Set("metadataItemID", ratingKey)

	var result historyResponse
	if err := c.getJSON(ctx, "/status/sessions/history/all", query, &result); err != nil {
		return nil, fmt.Errorf("get watch history %s: %w", ratingKey, err)
	}
	return result.MediaContainer.Metadata, nil
}

// GetPlaylists returns the video playlists that directly contain the item.
func (c *Client) GetPlaylists(ctx context.Context, ratingKey string) ([]Playlist, error) {
	query := url.Values{}
	query.Set("playlistType", "video")

	var all playlistsResponse
	if err := c.getJSON(ctx, "/playlists", query, &all); err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}

	playlists := all.MediaContainer.Metadata
	contains := make([]bool, len(playlists))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, pl := range playlists {
		g.Go(func() error {
			var items metadataResponse
			path := "/playlists/" + url.PathEscape(pl.RatingKey) + "/items"
			if err := c.getJSON(gctx, path, nil, &items); err != nil {
				return fmt.Errorf("playlist %s items: %w", pl.RatingKey, err)
			}
			for _, item := range items.MediaContainer.Metadata {
				if item.RatingKey == ratingKey {
					contains[i] = true
					break
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result []Playlist
	for i, pl := range playlists {
		if contains[i] {
			result = append(result, pl)
		}
	}
	return result, nil
}

// GetWatched returns every item of the given type in a library section that
// the token's account has watched.
func (c *Client) GetWatched(ctx context.Context, sectionID int, dataType DataType) ([]MediaItem, error) {
	path := "/library/sections/" + strconv.Itoa(sectionID) + "/all"

	var items []MediaItem
	for start := 0; ; {
		query := url.Values{}
		if dataType != DataTypeUnspecified {
			query.Set("type", strconv.Itoa(int(dataType)))
		}
		query.Set("viewCount>>", "0")
		query.Set("X-Plex-Container-Start", strconv.Itoa(start))
		query.Set("X-Plex-Container-Size", strconv.Itoa(watchedPageSize))

		var page metadataResponse
		if err := c.getJSON(ctx, path, query, &page); err != nil {
			return nil, fmt.Errorf("get watched section %d: %w", sectionID, err)
		}

		items = append(items, page.MediaContainer.Metadata...)
		got := len(page.MediaContainer.Metadata)
		total := page.MediaContainer.TotalSize
		if got < watchedPageSize || (total > 0 && len(items) >= total) {
			break
		}
		start += got
	}
	return items, nil
}
