package hmsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/hupe1980/hmsearch/internal/bits"
	"github.com/hupe1980/hmsearch/kvstore"
)

// Config records. Written once at Init, read back on every Open, never
// mutated. Values are ASCII decimal with no terminator, byte-compatible
// with databases written by the original implementation.
const (
	configKeyHashBits = "_hb"
	configKeyMaxError = "_me"
)

// OpenMode records the caller's intent when opening a database.
type OpenMode int

const (
	// ModeReadOnly opens the database for lookups only. Insert fails
	// with ErrReadOnly.
	ModeReadOnly OpenMode = iota

	// ModeReadWrite opens the database for lookups and inserts.
	ModeReadWrite
)

// Match is one lookup result: a stored hash and its exact Hamming
// distance from the query.
type Match struct {
	Hash     []byte
	Distance int
}

// DB is a handle to an open hmsearch database.
//
// A DB answers approximate nearest-neighbor lookups over fixed-width
// binary hashes under the Hamming metric: every stored hash within the
// configured maximum error of a query is returned, with its exact
// distance.
//
// Thread safety: one writer at a time. Lookups may run concurrently with
// each other (each builds private state) but not with an active Insert.
type DB struct {
	params  Params
	store   kvstore.Store
	mode    OpenMode
	logger  *Logger
	metrics MetricsCollector

	probeConcurrency int

	closed atomic.Bool
}

// Init creates a new database at path with the given hash width in bits
// and maximum answerable Hamming error. It fails if path already exists
// or the configuration is out of range, and leaves the database closed.
func Init(ctx context.Context, path string, hashBits, maxError int, optFns ...Option) error {
	o := applyOptions(optFns)

	if _, err := NewParams(hashBits, maxError); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	store, err := o.backend.Create(path)
	if err != nil {
		return err
	}

	if err := store.Put([]byte(configKeyHashBits), []byte(strconv.Itoa(hashBits))); err != nil {
		store.Close()
		return err
	}
	if err := store.Put([]byte(configKeyMaxError), []byte(strconv.Itoa(maxError))); err != nil {
		store.Close()
		return err
	}

	return store.Close()
}

// Open opens an existing database at path. The configuration persisted
// at Init is read back and the partition constants derived from it;
// Open fails with ErrConfigMissing if the config records are absent or
// do not parse.
func Open(ctx context.Context, path string, mode OpenMode, optFns ...Option) (*DB, error) {
	o := applyOptions(optFns)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store, err := o.backend.Open(path, mode == ModeReadOnly)
	if err != nil {
		return nil, err
	}

	hashBits, err := readConfigInt(store, configKeyHashBits)
	if err != nil {
		store.Close()
		return nil, err
	}
	maxError, err := readConfigInt(store, configKeyMaxError)
	if err != nil {
		store.Close()
		return nil, err
	}

	params, err := NewParams(hashBits, maxError)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("%w: %w", ErrConfigMissing, err)
	}

	db := &DB{
		params:           params,
		store:            store,
		mode:             mode,
		logger:           o.logger,
		metrics:          o.metricsCollector,
		probeConcurrency: o.probeConcurrency,
	}
	db.logger.LogOpen(ctx, path, hashBits, maxError)
	return db, nil
}

func readConfigInt(store kvstore.Store, key string) (int, error) {
	value, err := store.Get([]byte(key))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return 0, fmt.Errorf("%w: no %s record", ErrConfigMissing, key)
		}
		return 0, err
	}
	n, err := strconv.Atoi(string(value))
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s record %q", ErrConfigMissing, key, value)
	}
	return n, nil
}

// Params returns the database configuration and derived constants.
func (db *DB) Params() Params {
	return db.params
}

// Insert adds hash to the index. The hash fans out into one appended
// record per partition; with a backend that supports batched writes the
// fan-out commits atomically, otherwise a storage failure mid-way leaves
// the partitions inconsistent (a later successful insert of the same
// hash repairs them, at the cost of duplicate record entries).
//
// Duplicate inserts of the same hash are permitted; lookups return the
// hash once regardless.
func (db *DB) Insert(ctx context.Context, hash []byte) error {
	start := time.Now()
	err := db.insert(ctx, hash)
	db.metrics.RecordInsert(time.Since(start), err)
	db.logger.LogInsert(ctx, err)
	return err
}

func (db *DB) insert(ctx context.Context, hash []byte) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if db.mode != ModeReadWrite {
		return ErrReadOnly
	}
	if len(hash) != db.params.hashBytes {
		return &ErrHashLength{Expected: db.params.hashBytes, Actual: len(hash)}
	}
	return db.applyAppends(ctx, db.appendOps(hash, nil))
}

// BatchInsert adds many hashes in one call. All hashes are validated
// before any write; with a batching backend the whole set commits
// atomically.
func (db *DB) BatchInsert(ctx context.Context, hashes [][]byte) error {
	start := time.Now()
	err := db.batchInsert(ctx, hashes)
	db.metrics.RecordBatchInsert(len(hashes), time.Since(start), err)
	db.logger.LogBatchInsert(ctx, len(hashes), err)
	return err
}

func (db *DB) batchInsert(ctx context.Context, hashes [][]byte) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if db.mode != ModeReadWrite {
		return ErrReadOnly
	}
	for _, hash := range hashes {
		if len(hash) != db.params.hashBytes {
			return &ErrHashLength{Expected: db.params.hashBytes, Actual: len(hash)}
		}
	}

	ops := make([]kvstore.AppendOp, 0, len(hashes)*db.params.partitions)
	for _, hash := range hashes {
		ops = db.appendOps(hash, ops)
	}
	return db.applyAppends(ctx, ops)
}

func (db *DB) appendOps(hash []byte, ops []kvstore.AppendOp) []kvstore.AppendOp {
	for i := 0; i < db.params.partitions; i++ {
		key, _ := db.params.partitionKey(hash, i)
		ops = append(ops, kvstore.AppendOp{Key: key, Suffix: hash})
	}
	return ops
}

func (db *DB) applyAppends(ctx context.Context, ops []kvstore.AppendOp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if bw, ok := db.store.(kvstore.BatchWriter); ok {
		return bw.AppendBatch(ops)
	}
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := db.store.Append(op.Key, op.Suffix); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns every stored hash within the configured maximum error
// of query, with exact distances. Result order is unspecified; callers
// needing a stable order must sort.
func (db *DB) Lookup(ctx context.Context, query []byte) ([]Match, error) {
	return db.LookupWithin(ctx, query, -1)
}

// LookupWithin is Lookup with a tightened distance threshold. A
// nonnegative maxError below the configured maximum narrows the filter;
// larger or negative values mean "use the configured maximum".
func (db *DB) LookupWithin(ctx context.Context, query []byte, maxError int) ([]Match, error) {
	start := time.Now()
	matches, candidates, err := db.lookup(ctx, query, maxError)
	db.metrics.RecordLookup(candidates, len(matches), time.Since(start), err)
	db.logger.LogLookup(ctx, maxError, candidates, len(matches), err)
	return matches, err
}

func (db *DB) lookup(ctx context.Context, query []byte, override int) ([]Match, int, error) {
	if db.closed.Load() {
		return nil, 0, ErrClosed
	}
	if len(query) != db.params.hashBytes {
		return nil, 0, &ErrHashLength{Expected: db.params.hashBytes, Actual: len(query)}
	}

	threshold := db.params.maxError
	if override >= 0 && override < threshold {
		threshold = override
	}

	candidates, err := db.gatherCandidates(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	var matches []Match
	for hash, c := range candidates {
		// The admission rule is parameterized by the configured
		// maximum, not the per-call threshold: partitioning was laid
		// out for the configured maximum.
		if !c.valid(db.params.maxError) {
			continue
		}
		distance := bits.Hamming(query, []byte(hash))
		if distance <= threshold {
			matches = append(matches, Match{Hash: []byte(hash), Distance: distance})
		}
	}
	return matches, len(candidates), nil
}

// Close releases the underlying store. Idempotent.
func (db *DB) Close() error {
	if db.closed.Swap(true) {
		return nil
	}
	return db.store.Close()
}

// Stats describes an open database.
type Stats struct {
	HashBits      int
	MaxError      int
	HashBytes     int
	Partitions    int
	PartitionBits int

	// NumHashes counts stored hashes, duplicates included. Computed by
	// scanning the first partition's records.
	NumHashes int
}

// Stats scans the store and returns a statistics snapshot.
func (db *DB) Stats() (Stats, error) {
	if db.closed.Load() {
		return Stats{}, ErrClosed
	}

	stats := Stats{
		HashBits:      db.params.hashBits,
		MaxError:      db.params.maxError,
		HashBytes:     db.params.hashBytes,
		Partitions:    db.params.partitions,
		PartitionBits: db.params.partitionBits,
	}
	err := db.store.Scan(func(key, value []byte) error {
		if len(key) == db.params.keyLen() && key[0] == partitionKeyTag && key[1] == 0 {
			stats.NumHashes += len(value) / db.params.hashBytes
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// Dump writes a human-readable listing of every partition record to w:
// the partition index, the hex bit-slice, and the hex of each member
// hash. Diagnostic aid only; the format is not part of the contract.
func (db *DB) Dump(w io.Writer) error {
	if db.closed.Load() {
		return ErrClosed
	}

	return db.store.Scan(func(key, value []byte) error {
		if len(key) != db.params.keyLen() || key[0] != partitionKeyTag {
			return nil
		}
		if _, err := fmt.Fprintf(w, "Partition %d %s\n", key[1], FormatHex(key[2:])); err != nil {
			return err
		}
		for off := 0; off+db.params.hashBytes <= len(value); off += db.params.hashBytes {
			if _, err := fmt.Fprintf(w, "    %s\n", FormatHex(value[off:off+db.params.hashBytes])); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(w)
		return err
	})
}
