package hmsearch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hmsearch/kvstore"
)

// TestPersistence exercises the full lifecycle against every real
// backend: init, insert, close, reopen, lookup. Results after reopen
// must match results before close.
func TestPersistence(t *testing.T) {
	backends := []struct {
		name    string
		backend kvstore.Backend
		path    func(t *testing.T) string
	}{
		{
			name:    "LevelDB",
			backend: kvstore.LevelDBBackend{},
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "db") },
		},
		{
			name:    "SQLite",
			backend: kvstore.SQLiteBackend{},
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "db.sqlite") },
		},
		{
			name:    "Graviton",
			backend: kvstore.GravitonBackend{},
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "db") },
		},
	}

	stored := []string{"deadbeefcafebabe", "deadbeefcafebabf", "0000000000000000", "ffffffffffffffff"}
	queries := []string{"deadbeefcafebabe", "deadbeefcafebab0", "0000000000000001", "123456789abcdef0"}

	for _, tt := range backends {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			path := tt.path(t)

			require.NoError(t, Init(ctx, path, 64, 6, WithBackend(tt.backend)))

			// Init over an existing database must fail.
			err := Init(ctx, path, 64, 6, WithBackend(tt.backend))
			assert.Error(t, err)

			db, err := Open(ctx, path, ModeReadWrite, WithBackend(tt.backend))
			require.NoError(t, err)
			for _, s := range stored {
				require.NoError(t, db.Insert(ctx, mustHex(t, s)))
			}

			before := make([]map[string]int, len(queries))
			for i, q := range queries {
				before[i] = lookupSet(t, db, mustHex(t, q))
			}
			require.NoError(t, db.Close())

			db, err = Open(ctx, path, ModeReadOnly, WithBackend(tt.backend))
			require.NoError(t, err)
			defer db.Close()

			assert.Equal(t, 64, db.Params().HashBits())
			assert.Equal(t, 6, db.Params().MaxError())

			for i, q := range queries {
				assert.Equal(t, before[i], lookupSet(t, db, mustHex(t, q)), "query %s", q)
			}
		})
	}
}

// TestOpenNonexistent verifies open of a missing database fails for
// every backend.
func TestOpenNonexistent(t *testing.T) {
	ctx := context.Background()

	for _, tt := range []struct {
		name    string
		backend kvstore.Backend
	}{
		{"LevelDB", kvstore.LevelDBBackend{}},
		{"SQLite", kvstore.SQLiteBackend{}},
		{"Graviton", kvstore.GravitonBackend{}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(ctx, filepath.Join(t.TempDir(), "missing"), ModeReadOnly, WithBackend(tt.backend))
			assert.Error(t, err)
		})
	}
}
