package store

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryStore keeps encoded records in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	records     map[string]payload
}

type payload struct {
	nodes, edges, state []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.records = make(map[string]payload)
	return nil
}

func (s *MemoryStore) SaveGeometry(_ context.Context, rec Record) error {
	nodes, edges, state, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.records[rec.Name] = payload{nodes: nodes, edges: edges, state: state}
	return nil
}

func (s *MemoryStore) LoadGeometry(_ context.Context, name string) (Record, bool, error) {
	s.mu.RLock()
	p, ok := s.records[name]
	s.mu.RUnlock()

	if !ok {
		return Record{}, false, nil
	}
	rec, err := decodeRecord(name, p.nodes, p.edges, p.state)
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *MemoryStore) ListGeometries(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
