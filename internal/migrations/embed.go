// Package migrations provides embedded SQL migration files.
package migrations

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed sql/001_response_cache.sql
var ResponseCacheSQL string

// Apply runs every migration in order. Statements are idempotent.
func Apply(ctx context.Context, db *sql.DB) error {
	steps := []struct {
		name string
		sql  string
	}{
		{"001_response_cache", ResponseCacheSQL},
	}
	for _, s := range steps {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return fmt.Errorf("migration %s: %w", s.name, err)
		}
	}
	return nil
}
