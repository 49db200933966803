package kvstore

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDBBackend stores data in a LevelDB database directory. It is the
// default backend: databases it writes are key- and value-compatible
// with those produced by the original C++ implementation.
type LevelDBBackend struct{}

// Create creates a new LevelDB database at path, failing if one exists.
func (LevelDBBackend) Create(path string) (Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		ErrorIfExist: true,
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: create leveldb: %w", err)
	}
	return &levelDBStore{db: db}, nil
}

// Open opens an existing LevelDB database at path.
func (LevelDBBackend) Open(path string, readOnly bool) (Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		ErrorIfMissing: true,
		ReadOnly:       readOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: open leveldb: %w", err)
	}
	return &levelDBStore{db: db}, nil
}

type levelDBStore struct {
	db *leveldb.DB
}

func (s *levelDBStore) Get(key []byte) ([]byte, error) {
	value, err := s.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *levelDBStore) Put(key, value []byte) error {
	return s.db.Put(key, value, nil)
}

func (s *levelDBStore) Append(key, suffix []byte) error {
	current, err := s.Get(key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.db.Put(key, append(current, suffix...), nil)
}

// AppendBatch implements BatchWriter using a LevelDB write batch, so one
// insert's partition fan-out commits atomically.
func (s *levelDBStore) AppendBatch(ops []AppendOp) error {
	merged := make(map[string][]byte, len(ops))
	batch := new(leveldb.Batch)
	for _, op := range ops {
		k := string(op.Key)
		current, ok := merged[k]
		if !ok {
			existing, err := s.Get(op.Key)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			current = existing
		}
		merged[k] = append(current, op.Suffix...)
	}
	for k, v := range merged {
		batch.Put([]byte(k), v)
	}
	return s.db.Write(batch, nil)
}

func (s *levelDBStore) Scan(fn func(key, value []byte) error) error {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		key := append([]byte(nil), iter.Key()...)
		value := append([]byte(nil), iter.Value()...)
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (s *levelDBStore) Close() error {
	return s.db.Close()
}
