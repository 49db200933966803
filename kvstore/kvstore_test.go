package kvstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backendFixture produces a Backend and a fresh path for it.
type backendFixture struct {
	name       string
	newBackend func(t *testing.T) (Backend, string)
	ordered    bool // Scan yields keys in byte order
}

func fixtures() []backendFixture {
	return []backendFixture{
		{
			name: "Memory",
			newBackend: func(t *testing.T) (Backend, string) {
				return NewMemoryBackend(), "db"
			},
			ordered: true,
		},
		{
			name: "LevelDB",
			newBackend: func(t *testing.T) (Backend, string) {
				return LevelDBBackend{}, filepath.Join(t.TempDir(), "db")
			},
			ordered: true,
		},
		{
			name: "SQLite",
			newBackend: func(t *testing.T) (Backend, string) {
				return SQLiteBackend{}, filepath.Join(t.TempDir(), "db.sqlite")
			},
			ordered: true,
		},
		{
			name: "Graviton",
			newBackend: func(t *testing.T) (Backend, string) {
				return GravitonBackend{}, filepath.Join(t.TempDir(), "db")
			},
			ordered: false,
		},
	}
}

func TestBackendCreateOpen(t *testing.T) {
	for _, fx := range fixtures() {
		t.Run(fx.name, func(t *testing.T) {
			backend, path := fx.newBackend(t)

			_, err := backend.Open(path, false)
			assert.Error(t, err, "open before create must fail")

			store, err := backend.Create(path)
			require.NoError(t, err)
			require.NoError(t, store.Put([]byte("k"), []byte("v")))
			require.NoError(t, store.Close())

			_, err = backend.Create(path)
			assert.Error(t, err, "create over an existing store must fail")

			store, err = backend.Open(path, true)
			require.NoError(t, err)
			value, err := store.Get([]byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), value)
			require.NoError(t, store.Close())
		})
	}
}

func TestStoreGetPut(t *testing.T) {
	for _, fx := range fixtures() {
		t.Run(fx.name, func(t *testing.T) {
			backend, path := fx.newBackend(t)
			store, err := backend.Create(path)
			require.NoError(t, err)
			defer store.Close()

			_, err = store.Get([]byte("missing"))
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Put([]byte("a"), []byte{1, 2}))
			value, err := store.Get([]byte("a"))
			require.NoError(t, err)
			assert.Equal(t, []byte{1, 2}, value)

			// Put replaces.
			require.NoError(t, store.Put([]byte("a"), []byte{9}))
			value, err = store.Get([]byte("a"))
			require.NoError(t, err)
			assert.Equal(t, []byte{9}, value)
		})
	}
}

func TestStoreAppend(t *testing.T) {
	for _, fx := range fixtures() {
		t.Run(fx.name, func(t *testing.T) {
			backend, path := fx.newBackend(t)
			store, err := backend.Create(path)
			require.NoError(t, err)
			defer store.Close()

			// Append creates the record.
			require.NoError(t, store.Append([]byte("r"), []byte{1, 2}))
			value, err := store.Get([]byte("r"))
			require.NoError(t, err)
			assert.Equal(t, []byte{1, 2}, value)

			// Append extends it.
			require.NoError(t, store.Append([]byte("r"), []byte{3, 4}))
			value, err = store.Get([]byte("r"))
			require.NoError(t, err)
			assert.Equal(t, []byte{1, 2, 3, 4}, value)
		})
	}
}

func TestStoreAppendBatch(t *testing.T) {
	for _, fx := range fixtures() {
		t.Run(fx.name, func(t *testing.T) {
			backend, path := fx.newBackend(t)
			store, err := backend.Create(path)
			require.NoError(t, err)
			defer store.Close()

			bw, ok := store.(BatchWriter)
			require.True(t, ok, "every bundled backend batches")

			require.NoError(t, store.Append([]byte("x"), []byte{0}))
			require.NoError(t, bw.AppendBatch([]AppendOp{
				{Key: []byte("x"), Suffix: []byte{1}},
				{Key: []byte("y"), Suffix: []byte{2}},
				// Repeated key within one batch applies in order.
				{Key: []byte("x"), Suffix: []byte{3}},
			}))

			value, err := store.Get([]byte("x"))
			require.NoError(t, err)
			assert.Equal(t, []byte{0, 1, 3}, value)

			value, err = store.Get([]byte("y"))
			require.NoError(t, err)
			assert.Equal(t, []byte{2}, value)
		})
	}
}

func TestStoreScan(t *testing.T) {
	for _, fx := range fixtures() {
		t.Run(fx.name, func(t *testing.T) {
			backend, path := fx.newBackend(t)
			store, err := backend.Create(path)
			require.NoError(t, err)
			defer store.Close()

			records := map[string][]byte{
				"b": {2},
				"a": {1},
				"c": {3},
			}
			for k, v := range records {
				require.NoError(t, store.Put([]byte(k), v))
			}

			seen := make(map[string][]byte)
			var order []string
			require.NoError(t, store.Scan(func(key, value []byte) error {
				seen[string(key)] = append([]byte(nil), value...)
				order = append(order, string(key))
				return nil
			}))
			assert.Equal(t, records, seen)
			if fx.ordered {
				assert.Equal(t, []string{"a", "b", "c"}, order)
			}

			// Errors from the callback stop iteration and propagate.
			sentinel := errors.New("stop")
			err = store.Scan(func(key, value []byte) error {
				return sentinel
			})
			assert.ErrorIs(t, err, sentinel)
		})
	}
}
