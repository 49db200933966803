package kvstore

import (
	"errors"
	"fmt"
	"os"

	"github.com/deroproject/graviton"
)

// gravitonTree is the single tree all records live in.
const gravitonTree = "kv"

// GravitonBackend stores data in a Graviton store directory. Graviton is
// a versioned pure-Go key-value store; every write batch commits a new
// snapshot version.
//
// Graviton iterates keys in trie order, not byte order, so Scan yields
// pairs in an unspecified order.
type GravitonBackend struct{}

// Create creates a new Graviton store at path, failing if path exists.
func (GravitonBackend) Create(path string) (Store, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("kvstore: graviton store %q already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("kvstore: stat %q: %w", path, err)
	}
	return openGraviton(path)
}

// Open opens an existing Graviton store at path.
func (GravitonBackend) Open(path string, _ bool) (Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("kvstore: open graviton store %q: %w", path, err)
	}
	return openGraviton(path)
}

func openGraviton(path string) (Store, error) {
	store, err := graviton.NewDiskStore(path)
	if err != nil {
		return nil, fmt.Errorf("kvstore: graviton: %w", err)
	}
	ss, err := store.LoadSnapshot(0)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("kvstore: graviton snapshot: %w", err)
	}
	tree, err := ss.GetTree(gravitonTree)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("kvstore: graviton tree: %w", err)
	}
	return &gravitonStore{store: store, tree: tree}, nil
}

type gravitonStore struct {
	store *graviton.Store
	tree  *graviton.Tree
}

func (s *gravitonStore) Get(key []byte) ([]byte, error) {
	value, err := s.tree.Get(key)
	if err != nil {
		if errors.Is(err, graviton.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *gravitonStore) Put(key, value []byte) error {
	if err := s.tree.Put(key, value); err != nil {
		return err
	}
	_, err := graviton.Commit(s.tree)
	return err
}

func (s *gravitonStore) Append(key, suffix []byte) error {
	current, err := s.Get(key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.Put(key, append(current, suffix...))
}

// AppendBatch implements BatchWriter: all puts land in the tree, then a
// single Commit writes one snapshot version.
func (s *gravitonStore) AppendBatch(ops []AppendOp) error {
	merged := make(map[string][]byte, len(ops))
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
		if err := s.tree.Put([]byte(k), v); err != nil {
			return err
		}
	}
	_, err := graviton.Commit(s.tree)
	return err
}

func (s *gravitonStore) Scan(fn func(key, value []byte) error) error {
	c := s.tree.Cursor()
	for key, value, err := c.First(); ; key, value, err = c.Next() {
		if err != nil {
			if errors.Is(err, graviton.ErrNoMoreKeys) {
				return nil
			}
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
}

func (s *gravitonStore) Close() error {
	s.store.Close()
	return nil
}
