package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"unimart/pkg/platform/sentinel"
)

const stateFileMode = 0o600

// FileStore persists the session as a small JSON document on disk, the
// closest analogue to the browser's localStorage. Writes go through a
// temp-file rename so a crash mid-write cannot leave a torn document.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed store at path. The parent directory is
// created on first write, not here, so constructing a store never fails.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.read()
	if err != nil {
		return Entry{}, err
	}
	return loadResult(ctx, kv, func(context.Context) error { return s.purge() })
}

func (s *FileStore) SetOptimistic(_ context.Context, entry Entry) error {
	kv, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read()
	if err != nil {
		return err
	}
	// Keep scratch keys across logins; only the session triple is replaced.
	for k, v := range kv {
		existing[k] = v
	}
	return s.write(existing)
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purge()
}

func (s *FileStore) SetScratch(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.read()
	if err != nil {
		return err
	}
	kv[scratchPrefix+key] = value
	return s.write(kv)
}

func (s *FileStore) GetScratch(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.read()
	if err != nil {
		return "", err
	}
	if v, ok := kv[scratchPrefix+key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("scratch key %q: %w", key, sentinel.ErrNotFound)
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session state: %w", err)
	}

	kv := map[string]string{}
	if err := json.Unmarshal(data, &kv); err != nil {
		// A torn or hand-edited file is corruption, same as a partial set.
		return map[string]string{keyToken: ""}, nil
	}
	return kv, nil
}

func (s *FileStore) write(kv map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.Marshal(kv)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, stateFileMode); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session state: %w", err)
	}
	return nil
}

func (s *FileStore) purge() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session state: %w", err)
	}
	return nil
}
