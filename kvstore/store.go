// Package kvstore abstracts the ordered key-value store underneath an
// hmsearch database.
//
// The index only needs point get/put, an append upsert for partition
// records, full iteration, and exclusive creation. Backends wrap real
// stores (LevelDB, SQLite, Graviton) behind this façade; MemoryBackend
// keeps everything in process for tests.
package kvstore

import "errors"

// ErrNotFound is returned by Store.Get when a key does not exist.
//
// Implementations must return an error that satisfies
// `errors.Is(err, ErrNotFound)` so callers can distinguish absence from
// storage failure.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is an open handle to an ordered key-value store.
//
// A Store is exclusively owned by one database handle. Get must be safe
// for concurrent use; Put and Append assume a single writer.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	// The returned slice is owned by the caller.
	Get(key []byte) ([]byte, error)

	// Put durably stores value under key, replacing any previous value.
	Put(key, value []byte) error

	// Append appends suffix to the value under key, creating the record
	// if absent. The single-writer assumption makes read-modify-write a
	// valid implementation.
	Append(key, suffix []byte) error

	// Scan iterates over every key/value pair. Iteration stops at the
	// first error returned by fn, which is propagated.
	Scan(fn func(key, value []byte) error) error

	// Close releases the store. A memory store's Close is a no-op and
	// the store stays usable afterwards.
	Close() error
}

// AppendOp is one append in a batch.
type AppendOp struct {
	Key    []byte
	Suffix []byte
}

// BatchWriter is an optional Store extension for atomic multi-key
// appends. Backends with native batches or transactions implement it so
// the index can commit one insert's partition fan-out as a unit.
type BatchWriter interface {
	// AppendBatch applies all ops atomically: either every append is
	// durable or none is. Ops may repeat keys; repeats apply in order.
	AppendBatch(ops []AppendOp) error
}

// Backend creates and opens stores at filesystem paths.
type Backend interface {
	// Create creates a new empty store at path, failing if path already
	// exists.
	Create(path string) (Store, error)

	// Open opens an existing store at path, failing if there is none.
	// readOnly records the caller's intent; backends may ignore it.
	Open(path string, readOnly bool) (Store, error)
}
