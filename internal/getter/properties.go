package getter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vmunix/sweepr/internal/plex"
)

// input is everything a property algorithm may read.
type input struct {
	item     plex.MediaItem // the library item as listed by the caller
	resolved *Resolved
	dataType plex.DataType
	rule     *RuleContext
}

func (in *input) md() *plex.MediaItem { return in.resolved.Metadata }

type propertyFunc func(ctx context.Context, e *Evaluator, in *input) (Value, error)

// properties maps canonical property names to their algorithms.
var properties = map[string]propertyFunc{
	"addDate":                              addDate,
	"releaseDate":                          releaseDate,
	"rating_critics":                       rating(func(m *plex.MediaItem) *float64 { return m.Rating }),
	"rating_audience":                      rating(func(m *plex.MediaItem) *float64 { return m.AudienceRating }),
	"rating_user":                          rating(func(m *plex.MediaItem) *float64 { return m.UserRating }),
	"people":                               people,
	"genre":                                genre,
	"labels":                               labels,
	"fileVideoResolution":                  fileVideoResolution,
	"fileBitrate":                          fileBitrate,
	"fileVideoCodec":                       fileVideoCodec,
	"collections":                          collections,
	"collection_names":                     collectionNames,
	"sw_collections_including_parent":      collectionsIncludingParent,
	"sw_collection_names_including_parent": collectionNamesIncludingParent,
	"seenBy":                               seenBy,
	"viewCount":                            viewCount,
	"lastViewedAt":                         lastViewed,
	"watched_authenticated_user":           watchedByAuthenticatedUser,
	"playlists":                            playlistCount,
	"playlist_names":                       playlistNames,
	"sw_episodes":                          episodeCount,
	"sw_viewedEpisodes":                    viewedEpisodes,
	"sw_amountOfViews":                     amountOfViews,
	"sw_allEpisodesSeenBy":                 allEpisodesSeenBy,
	"sw_watchers":                          watchers,
	"sw_lastWatched":                       lastWatched,
	"sw_lastEpisodeAddedAt":                lastEpisodeAddedAt,
}

// releaseLayouts are the formats originallyAvailableAt has been seen in.
var releaseLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

func addDate(_ context.Context, _ *Evaluator, in *input) (Value, error) {
	if in.md().AddedAt == nil {
		return Null(), nil
	}
	return Time(time.Unix(*in.md().AddedAt, 0).UTC()), nil
}

func releaseDate(_ context.Context, _ *Evaluator, in *input) (Value, error) {
	raw := strings.TrimSpace(in.md().OriginallyAvailableAt)
	if raw == "" {
		return Null(), nil
	}
	for _, layout := range releaseLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Time(t.UTC()), nil
		}
	}
	return Null(), nil
}

// rating reports the field when present. Absent ratings read as 0.
func rating(field func(*plex.MediaItem) *float64) propertyFunc {
	return func(_ context.Context, _ *Evaluator, in *input) (Value, error) {
		if r := field(in.md()); r != nil {
			return Number(*r), nil
		}
		return Number(0), nil
	}
}

func people(_ context.Context, _ *Evaluator, in *input) (Value, error) {
	if in.md().Role == nil {
		return Null(), nil
	}
	return Strings(tagNames(in.md().Role)), nil
}

func genre(ctx context.Context, _ *Evaluator, in *input) (Value, error) {
	top, err := in.resolved.topLevel(ctx)
	if err != nil {
		return Value{}, err
	}
	if top.Genre == nil {
		return Null(), nil
	}
	return Strings(tagNames(top.Genre)), nil
}

func labels(ctx context.Context, _ *Evaluator, in *input) (Value, error) {
	top, err := in.resolved.topLevel(ctx)
	if err != nil {
		return Value{}, err
	}
	return Strings(tagNames(top.Label)), nil
}

func firstMedia(md *plex.MediaItem) plex.MediaFacet {
	if len(md.Media) == 0 {
		return plex.MediaFacet{}
	}
	return md.Media[0]
}

func fileVideoResolution(_ context.Context, _ *Evaluator, in *input) (Value, error) {
	if res := firstMedia(in.md()).VideoResolution; res != "" {
		return Text(res), nil
	}
	return Null(), nil
}

func fileBitrate(_ context.Context, _ *Evaluator, in *input) (Value, error) {
	if b := firstMedia(in.md()).Bitrate; b != nil {
		return Count(*b), nil
	}
	return Number(0), nil
}

func fileVideoCodec(_ context.Context, _ *Evaluator, in *input) (Value, error) {
	if codec := firstMedia(in.md()).VideoCodec; codec != "" {
		return Text(codec), nil
	}
	return Null(), nil
}

func collections(_ context.Context, _ *Evaluator, in *input) (Value, error) {
	managed, err := managedCollection(in.rule)
	if err != nil {
		return Value{}, err
	}
	return Count(countUnmanaged(in.md().Collection, managed)), nil
}

func collectionNames(_ context.Context, _ *Evaluator, in *input) (Value, error) {
	if in.md().Collection == nil {
		return Null(), nil
	}
	return Strings(trimmedTagNames(in.md().Collection)), nil
}

func collectionsIncludingParent(ctx context.Context, _ *Evaluator, in *input) (Value, error) {
	managed, err := managedCollection(in.rule)
	if err != nil {
		return Value{}, err
	}
	tags := collectionUnion(in.md(), in.resolved.Parent(ctx), in.resolved.Grandparent(ctx))
	return Count(countUnmanaged(tags, managed)), nil
}

func collectionNamesIncludingParent(ctx context.Context, _ *Evaluator, in *input) (Value, error) {
	tags := collectionUnion(in.md(), in.resolved.Parent(ctx), in.resolved.Grandparent(ctx))
	return Strings(trimmedTagNames(tags)), nil
}

func seenBy(ctx context.Context, e *Evaluator, in *input) (Value, error) {
	users, err := e.Users(ctx)
	if err != nil {
		return Value{}, err
	}
	events, err := e.provider.GetWatchHistory(ctx, in.md().RatingKey)
	if err != nil {
		e.log.Debug("watch history unavailable", "rating_key", in.md().RatingKey, "error", err)
		return Strings(nil), nil
	}
	return Strings(usernamesOf(users, viewerSet(events))), nil
}

func viewCount(ctx context.Context, e *Evaluator, in *input) (Value, error) {
	events, err := e.provider.GetWatchHistory(ctx, in.md().RatingKey)
	if err != nil {
		e.log.Debug("watch history unavailable", "rating_key", in.md().RatingKey, "error", err)
		return Number(0), nil
	}
	return Count(len(events)), nil
}

func lastViewed(ctx context.Context, e *Evaluator, in *input) (Value, error) {
	events, err := e.provider.GetWatchHistory(ctx, in.md().RatingKey)
	if err != nil {
		e.log.Debug("watch history unavailable", "rating_key", in.md().RatingKey, "error", err)
		return Null(), nil
	}
	if t, ok := lastViewedAt(events); ok {
		return Time(t), nil
	}
	return Null(), nil
}

func watchedByAuthenticatedUser(ctx context.Context, e *Evaluator, in *input) (Value, error) {
	section := in.item.LibrarySectionID
	if section == 0 {
		section = in.md().LibrarySectionID
	}
	dataType := in.dataType
	if dataType == plex.DataTypeUnspecified {
		dataType = plex.DataTypeFor(in.md().Type)
	}

	watched, err := e.provider.GetWatched(ctx, section, dataType)
	if err != nil {
		return Value{}, err
	}
	for _, w := range watched {
		if w.RatingKey == in.md().RatingKey {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

func isLeaf(md *plex.MediaItem) bool {
	return md.Type == plex.TypeMovie || md.Type == plex.TypeEpisode
}

// subtreePlaylists returns the playlists of the item, or for shows and
// seasons the distinct playlists of all their episodes in first-seen order.
func subtreePlaylists(ctx context.Context, e *Evaluator, md *plex.MediaItem) ([]plex.Playlist, error) {
	if isLeaf(md) {
		return e.provider.GetPlaylists(ctx, md.RatingKey)
	}

	eps, err := e.episodes(ctx, md)
	if err != nil {
		return nil, err
	}
	perEpisode, err := mapItems(ctx, e.concurrency, eps, func(ctx context.Context, ep plex.MediaItem) ([]plex.Playlist, error) {
		return e.provider.GetPlaylists(ctx, ep.RatingKey)
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []plex.Playlist
	for _, pls := range perEpisode {
		for _, pl := range pls {
			if _, ok := seen[pl.RatingKey]; ok {
				continue
			}
			seen[pl.RatingKey] = struct{}{}
			out = append(out, pl)
		}
	}
	return out, nil
}

func playlistCount(ctx context.Context, e *Evaluator, in *input) (Value, error) {
	pls, err := subtreePlaylists(ctx, e, in.md())
	if err != nil {
		return Value{}, err
	}
	return Count(len(pls)), nil
}

func playlistNames(ctx context.Context, e *Evaluator, in *input) (Value, error) {
	pls, err := subtreePlaylists(ctx, e, in.md())
	if err != nil {
		return Value{}, err
	}
	names := make([]string, len(pls))
	for i, pl := range pls {
		names[i] = strings.TrimSpace(pl.Title)
	}
	return Strings(names), nil
}

// episodeCount counts a season's children; shows and movies carry leafCount.
func episodeCount(ctx context.Context, e *Evaluator, in *input) (Value, error) {
	md := in.md()
	if md.Type == plex.TypeSeason {
		eps, err := e.provider.GetChildrenMetadata(ctx, md.RatingKey)
		if err != nil {
			return Value{}, err
		}
		return Count(len(eps)), nil
	}
	if md.LeafCount != nil {
		return Count(*md.LeafCount), nil
	}
	return Number(0), nil
}

func viewedEpisodes(ctx context.Context, e *Evaluator, in *input) (Value, error) {
	histories, err := e.episodeHistories(ctx, in.md())
	if err != nil {
		return Value{}, err
	}
	n := 0
	for _, h := range histories {
		if len(h) > 0 {
			n++
		}
	}
	return Count(n), nil
}

func amountOfViews(ctx context.Context, e *Evaluator, in *input) (Value, error) {
	md := in.md()
	if md.Type == plex.TypeEpisode {
		events, err := e.provider.GetWatchHistory(ctx, md.RatingKey)
		if err != nil {
			return Value{}, err
		}
		return Count(len(events)), nil
	}

	histories, err := e.episodeHistories(ctx, md)
	if err != nil {
		return Value{}, err
	}
	total := 0
	for _, h := range histories {
		total += len(h)
	}
	return Count(total), nil
}

// allEpisodesSeenBy keeps only the users that viewed every episode of the
// subtree. An episode whose history cannot be fetched counts as unwatched.
func allEpisodesSeenBy(ctx context.Context, e *Evaluator, in *input) (Value, error) {
	users, err := e.Users(ctx)
	if err != nil {
		return Value{}, err
	}
	eps, err := e.episodes(ctx, in.md())
	if err != nil {
		return Value{}, err
	}

	viewers, err := mapItems(ctx, e.concurrency, eps, func(ctx context.Context, ep plex.MediaItem) (map[int]struct{}, error) {
		events, err := e.provider.GetWatchHistory(ctx, ep.RatingKey)
		if err != nil {
			e.log.Debug("episode history unavailable, treating as unwatched", "rating_key", ep.RatingKey, "error", err)
			return map[int]struct{}{}, nil
		}
		return viewerSet(events), nil
	})
	if err != nil {
		return Value{}, err
	}

	remaining := make(map[int]struct{}, len(users))
	for _, u := range users {
		remaining[u.ID] = struct{}{}
	}
	for _, set := range viewers {
		for id := range remaining {
			if _, ok := set[id]; !ok {
				delete(remaining, id)
			}
		}
	}
	return Strings(usernamesOf(users, remaining)), nil
}

func watchers(ctx context.Context, e *Evaluator, in *input) (Value, error) {
	users, err := e.Users(ctx)
	if err != nil {
		return Value{}, err
	}
	events, err := e.provider.GetWatchHistory(ctx, in.md().RatingKey)
	if err != nil {
		return Value{}, err
	}
	ids := make(map[int]struct{})
	for _, id := range uniqueViewers(events) {
		ids[id] = struct{}{}
	}
	return Strings(usernamesOf(users, ids)), nil
}

func lastWatched(ctx context.Context, e *Evaluator, in *input) (Value, error) {
	events, err := e.provider.GetWatchHistory(ctx, in.md().RatingKey)
	if err != nil {
		return Value{}, err
	}
	if t, ok := lastWatchedByPosition(events); ok {
		return Time(t), nil
	}
	return Null(), nil
}

func lastEpisodeAddedAt(ctx context.Context, e *Evaluator, in *input) (Value, error) {
	seasons, err := e.seasons(ctx, in.md())
	if err != nil {
		return Value{}, err
	}
	season, ok := lastByIndex(seasons)
	if !ok {
		return Null(), nil
	}

	eps, err := e.provider.GetChildrenMetadata(ctx, season.RatingKey)
	if err != nil {
		return Value{}, fmt.Errorf("episodes of season %s: %w", season.RatingKey, err)
	}
	ep, ok := lastByIndex(eps)
	if !ok || ep.AddedAt == nil {
		return Null(), nil
	}
	return Time(time.Unix(*ep.AddedAt, 0).UTC()), nil
}
