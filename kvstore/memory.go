package kvstore

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryBackend is an in-process Backend for testing. Stores live in the
// backend keyed by path, so Create followed by a later Open sees the
// same data within one process. Nothing is persisted.
type MemoryBackend struct {
	mu     sync.Mutex
	stores map[string]*memoryStore
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		stores: make(map[string]*memoryStore),
	}
}

// Create creates a new in-memory store under path.
func (b *MemoryBackend) Create(path string) (Store, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.stores[path]; ok {
		return nil, fmt.Errorf("kvstore: memory store %q already exists", path)
	}
	s := &memoryStore{records: make(map[string][]byte)}
	b.stores[path] = s
	return s, nil
}

// Open opens a previously created in-memory store.
func (b *MemoryBackend) Open(path string, _ bool) (Store, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.stores[path]
	if !ok {
		return nil, fmt.Errorf("kvstore: memory store %q does not exist", path)
	}
	return s, nil
}

// memoryStore is a map-backed Store. Thread-safe for concurrent reads.
// Close is a no-op so a reopened store keeps its data.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func (s *memoryStore) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.records[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy to prevent external mutation.
	return append([]byte(nil), value...), nil
}

func (s *memoryStore) Put(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[string(key)] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStore) Append(key, suffix []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[string(key)] = append(s.records[string(key)], suffix...)
	return nil
}

// AppendBatch implements BatchWriter. The map update happens under one
// lock acquisition, so the batch is atomic with respect to readers.
func (s *memoryStore) AppendBatch(ops []AppendOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		k := string(op.Key)
		s.records[k] = append(s.records[k], op.Suffix...)
	}
	return nil
}

func (s *memoryStore) Scan(fn func(key, value []byte) error) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	snapshot := make([][]byte, len(keys))
	for i, k := range keys {
		snapshot[i] = append([]byte(nil), s.records[k]...)
	}
	s.mu.RUnlock()

	for i, k := range keys {
		if err := fn([]byte(k), snapshot[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
