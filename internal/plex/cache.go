package plex

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// CacheKind identifies the endpoint a cached response came from.
type CacheKind string

const (
	CacheMetadata CacheKind = "metadata" // /library/metadata/{key}
	CacheChildren CacheKind = "children" // /library/metadata/{key}/children
)

// CacheKinds lists every kind the client stores, in display order.
var CacheKinds = []CacheKind{CacheMetadata, CacheChildren}

// ParseCacheKind maps a user-supplied name to a kind. The empty string
// selects every kind.
func ParseCacheKind(s string) (CacheKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, k := range CacheKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown cache kind %q (want metadata or children)", s)
}

// Cache stores Plex responses that decoded cleanly in SQLite, one row per
// (kind, rating key). Watch history, playlists and user directories change
// too often to cache and never reach it.
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// NewCache wraps a database migrated with internal/migrations.
func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db, now: time.Now}
}

// Lookup returns the stored body for ratingKey if it has not expired.
func (c *Cache) Lookup(ctx context.Context, kind CacheKind, ratingKey string) ([]byte, bool) {
	var body []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT body FROM response_cache WHERE kind = ? AND rating_key = ? AND expires_at > ?",
		string(kind), ratingKey, c.now().UnixMilli(),
	).Scan(&body)
	if err != nil {
		return nil, false
	}
	return body, true
}

// Store records body for ratingKey, replacing any previous entry.
func (c *Cache) Store(ctx context.Context, kind CacheKind, ratingKey string, body []byte, ttl time.Duration) error {
	now := c.now()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO response_cache (kind, rating_key, body, cached_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(kind, rating_key) DO UPDATE SET
		   body = excluded.body, cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		string(kind), ratingKey, body, now.UnixMilli(), now.Add(ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("cache store %s/%s: %w", kind, ratingKey, err)
	}
	return nil
}

// PruneFilter selects the entries Prune removes.
type PruneFilter struct {
	Kind CacheKind // empty matches every kind
	All  bool      // also remove entries that are still fresh
}

// Prune deletes the entries matched by f and reports how many went.
func (c *Cache) Prune(ctx context.Context, f PruneFilter) (int64, error) {
	var (
		conds []string
		args  []any
	)
	if f.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if !f.All {
		conds = append(conds, "expires_at <= ?")
		args = append(args, c.now().UnixMilli())
	}

	query := "DELETE FROM response_cache"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return result.RowsAffected()
}

// CacheStats summarizes the entries of one kind.
type CacheStats struct {
	Kind    CacheKind `json:"kind"`
	Entries int       `json:"entries"`
	Expired int       `json:"expired"`
	Bytes   int64     `json:"bytes"`
	Oldest  time.Time `json:"oldest"`
}

// Stats reports per-kind counts for every kind in CacheKinds, including
// kinds with no entries.
func (c *Cache) Stats(ctx context.Context) ([]CacheStats, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT kind, COUNT(*),
		        SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END),
		        SUM(LENGTH(body)),
		        MIN(cached_at)
		 FROM response_cache GROUP BY kind`,
		c.now().UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}
	defer rows.Close()

	byKind := make(map[CacheKind]CacheStats)
	for rows.Next() {
		var (
			s      CacheStats
			kind   string
			oldest int64
		)
		if err := rows.Scan(&kind, &s.Entries, &s.Expired, &s.Bytes, &oldest); err != nil {
			return nil, fmt.Errorf("cache stats: %w", err)
		}
		s.Kind = CacheKind(kind)
		s.Oldest = time.UnixMilli(oldest).UTC()
		byKind[s.Kind] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}

	out := make([]CacheStats, 0, len(CacheKinds))
	for _, k := range CacheKinds {
		s, ok := byKind[k]
		if !ok {
			s = CacheStats{Kind: k}
		}
		out = append(out, s)
	}
	return out, nil
}
