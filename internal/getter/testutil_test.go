package getter_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vmunix/sweepr/internal/catalog"
	"github.com/vmunix/sweepr/internal/getter"
	"github.com/vmunix/sweepr/internal/plex"
)

// testLogger returns a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T {
	return &v
}

// fakeProvider serves a fixed library from maps. Missing metadata and
// configured errors are returned as failures.
type fakeProvider struct {
	mu sync.Mutex

	items      map[string]*plex.MediaItem
	children   map[string][]plex.MediaItem
	history    map[string][]plex.WatchEvent
	historyErr map[string]error
	playlists  map[string][]plex.Playlist
	users      []plex.LocalUser
	usersErr   error
	remote     []plex.RemoteIdentity
	remoteErr  error
	watched    []plex.MediaItem

	calls map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		items:      make(map[string]*plex.MediaItem),
		children:   make(map[string][]plex.MediaItem),
		history:    make(map[string][]plex.WatchEvent),
		historyErr: make(map[string]error),
		playlists:  make(map[string][]plex.Playlist),
		calls:      make(map[string]int),
	}
}

func (f *fakeProvider) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeProvider) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// add registers an item and links it below its parent.
func (f *fakeProvider) add(item plex.MediaItem) *fakeProvider {
	f.items[item.RatingKey] = &item
	if item.Type == plex.TypeSeason && item.ParentRatingKey != "" {
		f.children[item.ParentRatingKey] = append(f.children[item.ParentRatingKey], item)
	}
	if item.Type == plex.TypeEpisode && item.ParentRatingKey != "" {
		f.children[item.ParentRatingKey] = append(f.children[item.ParentRatingKey], item)
	}
	return f
}

func (f *fakeProvider) GetMetadata(_ context.Context, ratingKey string) (*plex.MediaItem, error) {
	f.record("GetMetadata")
	item, ok := f.items[ratingKey]
	if !ok {
		return nil, fmt.Errorf("metadata %s: %w", ratingKey, plex.ErrNotFound)
	}
	return item, nil
}

func (f *fakeProvider) GetChildrenMetadata(_ context.Context, ratingKey string) ([]plex.MediaItem, error) {
	f.record("GetChildrenMetadata")
	return f.children[ratingKey], nil
}

func (f *fakeProvider) GetWatchHistory(_ context.Context, ratingKey string) ([]plex.WatchEvent, error) {
	f.record("GetWatchHistory")
	if err := f.historyErr[ratingKey]; err != nil {
		return nil, err
	}
	return f.history[ratingKey], nil
}

func (f *fakeProvider) GetPlaylists(_ context.Context, ratingKey string) ([]plex.Playlist, error) {
	f.record("GetPlaylists")
	return f.playlists[ratingKey], nil
}

func (f *fakeProvider) GetUsers(_ context.Context) ([]plex.LocalUser, error) {
	f.record("GetUsers")
	return f.users, f.usersErr
}

func (f *fakeProvider) GetPlexTVUsers(_ context.Context) ([]plex.RemoteIdentity, error) {
	f.record("GetPlexTVUsers")
	return f.remote, f.remoteErr
}

func (f *fakeProvider) GetWatched(_ context.Context, _ int, _ plex.DataType) ([]plex.MediaItem, error) {
	f.record("GetWatched")
	return f.watched, nil
}

var _ getter.Provider = (*fakeProvider)(nil)

// newEvaluator builds an evaluator over the embedded catalog.
func newEvaluator(t *testing.T, p getter.Provider, opts ...getter.Option) *getter.Evaluator {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)

	opts = append([]getter.Option{getter.WithLogger(testLogger())}, opts...)
	e, err := getter.New(cat, p, opts...)
	require.NoError(t, err)
	return e
}

// propID returns the catalog id of a property name.
func propID(t *testing.T, name string) int {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	d, err := cat.LookupName(catalog.ApplicationPlex, name)
	require.NoError(t, err)
	return d.ID
}

// eval evaluates a property by name with an optional rule.
func eval(t *testing.T, e *getter.Evaluator, name, ratingKey string, rule *getter.RuleContext) getter.Value {
	t.Helper()
	return e.Evaluate(context.Background(), propID(t, name), plex.MediaItem{RatingKey: ratingKey}, plex.DataTypeUnspecified, rule)
}

func unix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// showFixture builds a show with two seasons:
//
//	show 100
//	  season 110 (index 1): episodes 111, 112
//	  season 120 (index 2): episodes 121
func showFixture() *fakeProvider {
	f := newFakeProvider()
	f.add(plex.MediaItem{RatingKey: "100", Type: plex.TypeShow, LeafCount: ptr(3), Genre: []plex.Tag{{Tag: "Drama"}}, Label: []plex.Tag{{Tag: "keep"}}})
	f.add(plex.MediaItem{RatingKey: "110", Type: plex.TypeSeason, Index: 1, ParentRatingKey: "100"})
	f.add(plex.MediaItem{RatingKey: "120", Type: plex.TypeSeason, Index: 2, ParentRatingKey: "100"})
	f.add(plex.MediaItem{RatingKey: "111", Type: plex.TypeEpisode, Index: 1, ParentRatingKey: "110", GrandparentRatingKey: "100", AddedAt: ptr(int64(1000))})
	f.add(plex.MediaItem{RatingKey: "112", Type: plex.TypeEpisode, Index: 2, ParentRatingKey: "110", GrandparentRatingKey: "100", AddedAt: ptr(int64(2000))})
	f.add(plex.MediaItem{RatingKey: "121", Type: plex.TypeEpisode, Index: 1, ParentRatingKey: "120", GrandparentRatingKey: "100", AddedAt: ptr(int64(3000))})
	f.users = []plex.LocalUser{{ID: 1, Name: "alice"}, {ID: 2, Name: "bob"}, {ID: 3, Name: "carol"}}
	f.remote = []plex.RemoteIdentity{{ID: 1, Username: "Alice99"}}
	return f
}
