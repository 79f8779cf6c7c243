package getter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vmunix/sweepr/internal/plex"
)

// Resolver fetches an item's metadata and, on demand, its ancestors.
type Resolver struct {
	provider Provider
	log      *slog.Logger
}

// NewResolver creates a resolver backed by the provider.
func NewResolver(provider Provider, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{provider: provider, log: log}
}

// Resolved is the metadata of one item plus lazily fetched ancestors. It
// lives for a single evaluation.
type Resolved struct {
	Metadata *plex.MediaItem

	resolver    *Resolver
	parent      ancestor
	grandparent ancestor
}

type ancestor struct {
	once sync.Once
	item *plex.MediaItem
	err  error
}

// Resolve fetches the item's own metadata. A failure here fails the whole
// evaluation.
func (r *Resolver) Resolve(ctx context.Context, ratingKey string) (*Resolved, error) {
	md, err := r.provider.GetMetadata(ctx, ratingKey)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ratingKey, err)
	}
	if md == nil {
		return nil, fmt.Errorf("resolve %s: %w", ratingKey, plex.ErrNotFound)
	}
	return &Resolved{Metadata: md, resolver: r}, nil
}

// Parent returns the parent item, or nil when the item has none or the fetch
// failed.
func (res *Resolved) Parent(ctx context.Context) *plex.MediaItem {
	item, _ := res.parentResult(ctx)
	return item
}

// Grandparent returns the grandparent item, or nil when the item has none or
// the fetch failed.
func (res *Resolved) Grandparent(ctx context.Context) *plex.MediaItem {
	item, _ := res.grandparentResult(ctx)
	return item
}

func (res *Resolved) parentResult(ctx context.Context) (*plex.MediaItem, error) {
	return res.resolver.ancestor(ctx, &res.parent, res.Metadata.ParentRatingKey, "parent")
}

func (res *Resolved) grandparentResult(ctx context.Context) (*plex.MediaItem, error) {
	return res.resolver.ancestor(ctx, &res.grandparent, res.Metadata.GrandparentRatingKey, "grandparent")
}

func (r *Resolver) ancestor(ctx context.Context, a *ancestor, key, kind string) (*plex.MediaItem, error) {
	a.once.Do(func() {
		if key == "" {
			a.err = fmt.Errorf("no %s key: %w", kind, ErrMissingAncestor)
			return
		}
		item, err := r.provider.GetMetadata(ctx, key)
		if err != nil {
			r.log.Debug("ancestor fetch failed", "kind", kind, "rating_key", key, "error", err)
			a.err = fmt.Errorf("%s %s: %w: %w", kind, key, ErrMissingAncestor, err)
			return
		}
		a.item = item
	})
	return a.item, a.err
}

// topLevel returns the show or movie entity that carries genres and labels:
// the grandparent of an episode, the parent of a season, else the item.
func (res *Resolved) topLevel(ctx context.Context) (*plex.MediaItem, error) {
	switch res.Metadata.Type {
	case plex.TypeEpisode:
		return res.grandparentResult(ctx)
	case plex.TypeSeason:
		return res.parentResult(ctx)
	default:
		return res.Metadata, nil
	}
}
