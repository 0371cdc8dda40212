package store

import (
	"context"
	"fmt"
	"sync"

	"unimart/pkg/platform/sentinel"
)

// InMemoryStore keeps the session in process memory. It backs tests and
// ephemeral sessions where nothing should survive a restart.
type InMemoryStore struct {
	mu sync.RWMutex
	kv map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{kv: make(map[string]string)}
}

func (s *InMemoryStore) Load(ctx context.Context) (Entry, error) {
	s.mu.RLock()
	snapshot := make(map[string]string, len(s.kv))
	for k, v := range s.kv {
		snapshot[k] = v
	}
	s.mu.RUnlock()

	return loadResult(ctx, snapshot, s.Clear)
}

func (s *InMemoryStore) SetOptimistic(_ context.Context, entry Entry) error {
	kv, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range kv {
		s.kv[k] = v
	}
	return nil
}

func (s *InMemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv = make(map[string]string)
	return nil
}

func (s *InMemoryStore) SetScratch(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[scratchPrefix+key] = value
	return nil
}

func (s *InMemoryStore) GetScratch(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.kv[scratchPrefix+key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("scratch key %q: %w", key, sentinel.ErrNotFound)
}
