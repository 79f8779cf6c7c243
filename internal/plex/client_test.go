package plex

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, serverURL string, opts ...Option) *Client {
	t.Helper()
	return NewClient(Config{
		BaseURL:    serverURL,
		Token:      "test-token",
		PlexTVURL:  serverURL,
		Retries:    2,
		RetryDelay: time.Millisecond,
	}, testLogger(), opts...)
}

func TestClient_GetMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/metadata/111", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Plex-Token"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"MediaContainer":{"size":1,"Metadata":[{
			"ratingKey":"111","type":"episode","title":"Pilot","index":1,"parentIndex":1,
			"parentRatingKey":"110","grandparentRatingKey":"100","librarySectionID":2,
			"addedAt":1700000000,"originallyAvailableAt":"2020-01-02","audienceRating":8.1,
			"Role":[{"tag":"Ann"}],"Collection":[{"tag":"Sitcoms"}],
			"Media":[{"videoResolution":"1080","bitrate":4200,"videoCodec":"h264"}]
		}]}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	item, err := client.GetMetadata(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, "111", item.RatingKey)
	assert.Equal(t, TypeEpisode, item.Type)
	assert.Equal(t, "110", item.ParentRatingKey)
	assert.Equal(t, "100", item.GrandparentRatingKey)
	assert.Equal(t, 2, item.LibrarySectionID)
	require.NotNil(t, item.AddedAt)
	assert.Equal(t, int64(1700000000), *item.AddedAt)
	require.NotNil(t, item.AudienceRating)
	assert.InDelta(t, 8.1, *item.AudienceRating, 0.0001)
	assert.Nil(t, item.Rating)
	assert.Equal(t, []Tag{{Tag: "Ann"}}, item.Role)
	require.Len(t, item.Media, 1)
	require.NotNil(t, item.Media[0].Bitrate)
	assert.Equal(t, 4200, *item.Media[0].Bitrate)
}

func TestClient_GetMetadata_NotFound(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	item, err := client.GetMetadata(context.Background(), "404")
	assert.Nil(t, item)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load(), "not found is not retried")
}

func TestClient_GetMetadata_EmptyContainer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"MediaContainer":{"size":0}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetMetadata(context.Background(), "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"MediaContainer":{"Metadata":[{"ratingKey":"1","type":"movie"}]}}`))
	}))
	defer server.Close()

	item, err := newTestClient(t, server.URL).GetMetadata(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", item.RatingKey)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetWatchHistory(context.Background(), "1")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetUsers(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL: server.URL,
		Token:   "test-token",
		Breaker: BreakerSettings{MinRequests: 2, FailureRatio: 0.5, Timeout: time.Minute},
	}, testLogger())

	ctx := context.Background()
	for range 2 {
		_, err := client.GetMetadata(ctx, "1")
		assert.ErrorIs(t, err, ErrServer)
	}

	_, err := client.GetMetadata(ctx, "1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_GetWatchHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status/sessions/history/all", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("metadataItemID"))
		assert.Equal(t, "viewedAt:desc", r.URL.Query().Get("sort"))
		_, _ = w.Write([]byte(`{"MediaContainer":{"size":2,"Metadata":[
			{"ratingKey":"42","accountID":2,"viewedAt":200,"parentIndex":1,"index":3},
			{"ratingKey":"42","accountID":1,"viewedAt":100,"parentIndex":1,"index":2}
		]}}`))
	}))
	defer server.Close()

	events, err := newTestClient(t, server.URL).GetWatchHistory(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, WatchEvent{RatingKey: "42", AccountID: 2, ViewedAt: 200, SeasonIndex: 1, EpisodeIndex: 3}, events[0])
	assert.Equal(t, time.Unix(200, 0).UTC(), events[0].ViewedTime())
}

func TestClient_GetPlaylists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/playlists":
			assert.Equal(t, "video", r.URL.Query().Get("playlistType"))
			_, _ = w.Write([]byte(`{"MediaContainer":{"Metadata":[
				{"ratingKey":"p1","title":"Weekend","playlistType":"video","leafCount":2},
				{"ratingKey":"p2","title":"Later","playlistType":"video","leafCount":1},
				{"ratingKey":"p3","title":"Binge","playlistType":"video","leafCount":1}
			]}}`))
		case "/playlists/p1/items":
			_, _ = w.Write([]byte(`{"MediaContainer":{"Metadata":[{"ratingKey":"7"},{"ratingKey":"8"}]}}`))
		case "/playlists/p2/items":
			_, _ = w.Write([]byte(`{"MediaContainer":{"Metadata":[{"ratingKey":"9"}]}}`))
		case "/playlists/p3/items":
			_, _ = w.Write([]byte(`{"MediaContainer":{"Metadata":[{"ratingKey":"8"}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	pls, err := newTestClient(t, server.URL).GetPlaylists(context.Background(), "8")
	require.NoError(t, err)
	require.Len(t, pls, 2)
	assert.Equal(t, "Weekend", pls[0].Title)
	assert.Equal(t, "Binge", pls[1].Title)
}

func TestClient_GetWatched_Pages(t *testing.T) {
	const total = watchedPageSize + 3
	var pages atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/sections/3/all", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("type"))
		assert.Equal(t, "0", r.URL.Query().Get("viewCount>>"))
		pages.Add(1)

		start, _ := strconv.Atoi(r.URL.Query().Get("X-Plex-Container-Start"))
		size, _ := strconv.Atoi(r.URL.Query().Get("X-Plex-Container-Size"))
		end := min(start+size, total)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"MediaContainer":{"totalSize":` + strconv.Itoa(total) + `,"Metadata":[`))
		for i := start; i < end; i++ {
			if i > start {
				_, _ = w.Write([]byte(","))
			}
			_, _ = w.Write([]byte(`{"ratingKey":"` + strconv.Itoa(i) + `","type":"movie"}`))
		}
		_, _ = w.Write([]byte(`]}}`))
	}))
	defer server.Close()

	items, err := newTestClient(t, server.URL).GetWatched(context.Background(), 3, DataTypeMovie)
	require.NoError(t, err)
	assert.Len(t, items, total)
	assert.Equal(t, int32(2), pages.Load())
	assert.Equal(t, "0", items[0].RatingKey)
	assert.Equal(t, strconv.Itoa(total-1), items[total-1].RatingKey)
}

func TestClient_GetUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts":
			_, _ = w.Write([]byte(`{"MediaContainer":{"size":2,"Account":[{"id":1,"name":"alice"},{"id":2,"name":"bob"}]}}`))
		case "/api/users":
			assert.Equal(t, "application/xml", r.Header.Get("Accept"))
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer friendlyName="myPlex" size="2">
  <User id="1" title="Alice" username="Alice99" email="alice@example.com"/>
  <User id="3" title="Carol" username="" email=""/>
</MediaContainer>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	local, err := client.GetUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []LocalUser{{ID: 1, Name: "alice"}, {ID: 2, Name: "bob"}}, local)

	remote, err := client.GetPlexTVUsers(ctx)
	require.NoError(t, err)
	require.Len(t, remote, 2)
	assert.Equal(t, RemoteIdentity{ID: 1, Username: "Alice99", Title: "Alice", Email: "alice@example.com"}, remote[0])
	assert.Empty(t, remote[1].Username)
}

func TestClient_CachesItemLookups(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/library/metadata/1":
			_, _ = w.Write([]byte(`{"MediaContainer":{"Metadata":[{"ratingKey":"1","type":"show"}]}}`))
		case "/library/metadata/1/children":
			_, _ = w.Write([]byte(`{"MediaContainer":{"Metadata":[{"ratingKey":"11","type":"season","index":1}]}}`))
		default:
			_, _ = w.Write([]byte(`{"MediaContainer":{"size":0}}`))
		}
	}))
	defer server.Close()

	cache := NewCache(setupTestDB(t))
	client := newTestClient(t, server.URL, WithCache(cache, time.Hour))
	ctx := context.Background()

	for range 2 {
		item, err := client.GetMetadata(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "1", item.RatingKey)

		children, err := client.GetChildrenMetadata(ctx, "1")
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, "11", children[0].RatingKey)
	}
	assert.Equal(t, int32(2), calls.Load(), "second round is served from cache")

	_, err := client.GetWatchHistory(ctx, "1")
	require.NoError(t, err)
	_, err = client.GetWatchHistory(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load(), "history is never cached")

	n, err := cache.Prune(ctx, PruneFilter{Kind: CacheChildren, All: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = client.GetChildrenMetadata(ctx, "1")
	require.NoError(t, err)
	_, err = client.GetMetadata(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int32(5), calls.Load(), "only the pruned kind is refetched")
}

func TestClient_DoesNotCacheUndecodableBody(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	cache := NewCache(setupTestDB(t))
	client := newTestClient(t, server.URL, WithCache(cache, time.Hour))

	_, err := client.GetMetadata(context.Background(), "1")
	require.Error(t, err)

	_, ok := cache.Lookup(context.Background(), CacheMetadata, "1")
	assert.False(t, ok)
}

func TestDataTypeFor(t *testing.T) {
	assert.Equal(t, DataTypeMovie, DataTypeFor(TypeMovie))
	assert.Equal(t, DataTypeShow, DataTypeFor(TypeShow))
	assert.Equal(t, DataTypeSeason, DataTypeFor(TypeSeason))
	assert.Equal(t, DataTypeEpisode, DataTypeFor(TypeEpisode))
	assert.Equal(t, DataTypeUnspecified, DataTypeFor("artist"))
}
