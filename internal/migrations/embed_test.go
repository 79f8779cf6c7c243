package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestApply_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, Apply(ctx, db))
	require.NoError(t, Apply(ctx, db), "second run is a no-op")

	var name string
	err = db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'response_cache'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "response_cache", name)
}

func TestResponseCacheSQL_Embedded(t *testing.T) {
	assert.Contains(t, ResponseCacheSQL, "CREATE TABLE IF NOT EXISTS response_cache")
}
