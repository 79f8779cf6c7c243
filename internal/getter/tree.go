package getter

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/sweepr/internal/plex"
)

// mapItems applies fn to every item with at most limit calls in flight and
// returns the results in item order. The first error cancels the rest. A
// panic in fn is returned as an error wrapping errPanicked, since recover in
// the caller cannot see it.
func mapItems[T any](ctx context.Context, limit int, items []plex.MediaItem, fn func(context.Context, plex.MediaItem) (T, error)) ([]T, error) {
	out := make([]T, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))
	for i, item := range items {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%s %s: %w: %v", item.Type, item.RatingKey, errPanicked, r)
				}
			}()
			v, err := fn(gctx, item)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// seasons returns the seasons below item; a season is its own only season.
func (e *Evaluator) seasons(ctx context.Context, item *plex.MediaItem) ([]plex.MediaItem, error) {
	if item.Type == plex.TypeSeason {
		return []plex.MediaItem{*item}, nil
	}
	return e.provider.GetChildrenMetadata(ctx, item.RatingKey)
}

// episodes returns every episode of the subtree, season by season.
func (e *Evaluator) episodes(ctx context.Context, item *plex.MediaItem) ([]plex.MediaItem, error) {
	seasons, err := e.seasons(ctx, item)
	if err != nil {
		return nil, err
	}
	perSeason, err := mapItems(ctx, e.concurrency, seasons, func(ctx context.Context, season plex.MediaItem) ([]plex.MediaItem, error) {
		return e.provider.GetChildrenMetadata(ctx, season.RatingKey)
	})
	if err != nil {
		return nil, err
	}
	return slices.Concat(perSeason...), nil
}

// episodeHistories fetches the watch history of every episode in the subtree.
func (e *Evaluator) episodeHistories(ctx context.Context, item *plex.MediaItem) ([][]plex.WatchEvent, error) {
	eps, err := e.episodes(ctx, item)
	if err != nil {
		return nil, err
	}
	return mapItems(ctx, e.concurrency, eps, func(ctx context.Context, ep plex.MediaItem) ([]plex.WatchEvent, error) {
		return e.provider.GetWatchHistory(ctx, ep.RatingKey)
	})
}

// lastByIndex returns the item with the highest index; among equal indexes
// the one listed last wins.
func lastByIndex(items []plex.MediaItem) (plex.MediaItem, bool) {
	if len(items) == 0 {
		return plex.MediaItem{}, false
	}
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b plex.MediaItem) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return sorted[len(sorted)-1], true
}
