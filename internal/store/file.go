package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore is a MemoryStore persisted to one YAML file after every change.
type FileStore struct {
	*MemoryStore
	path string
	// saveMu keeps snapshots hitting the disk in the order they were taken.
	saveMu sync.Mutex
}

func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{MemoryStore: NewMemoryStore(), path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var recs []*Record
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("store %s: %w", path, err)
	}
	for _, r := range recs {
		if err := s.MemoryStore.Put(context.Background(), r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *FileStore) Put(ctx context.Context, r *Record) error {
	if err := s.MemoryStore.Put(ctx, r); err != nil {
		return err
	}
	return s.save()
}

func (s *FileStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.MemoryStore.Delete(ctx, collection, id); err != nil {
		return err
	}
	return s.save()
}

func (s *FileStore) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	var recs []*Record
	for _, coll := range s.data {
		for _, r := range coll {
			recs = append(recs, r)
		}
	}
	recs = newestFirst(recs, 0)
	data, err := yaml.Marshal(recs)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
