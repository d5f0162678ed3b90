package bookmark

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/mandelview/pkg/errors"
)

// FileStore keeps one JSON file per bookmark in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create bookmark dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the bookmark directory.
func (s *FileStore) Path() string {
	return s.dir
}

// path maps an id to its file. Only UUIDs are accepted so an id can never
// escape the directory.
func (s *FileStore) path(id string) (string, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return filepath.Join(s.dir, id+".json"), true
}

func (s *FileStore) Save(ctx context.Context, b *Bookmark) error {
	if err := b.Validate(); err != nil {
		return err
	}
	path, ok := s.path(b.ID)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid bookmark id %q", b.ID)
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bookmark: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write bookmark file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Bookmark, error) {
	path, ok := s.path(id)
	if !ok {
		return nil, notFound(id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return readBookmark(path, id)
}

func (s *FileStore) List(ctx context.Context) ([]*Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read bookmark dir: %w", err)
	}

	var out []*Bookmark
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		b, err := readBookmark(filepath.Join(s.dir, e.Name()), e.Name())
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	path, ok := s.path(id)
	if !ok {
		return notFound(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return notFound(id)
	}
	if err != nil {
		return fmt.Errorf("remove bookmark file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func readBookmark(path, id string) (*Bookmark, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("read bookmark file: %w", err)
	}
	var b Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse bookmark %s: %w", id, err)
	}
	return &b, nil
}

func sortNewestFirst(bs []*Bookmark) {
	slices.SortStableFunc(bs, func(a, b *Bookmark) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

var _ Store = (*FileStore)(nil)
