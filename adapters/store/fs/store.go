package storefs

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goliatone/go-shopadmin/catalog"
)

// Store keeps preferences as one file per key under Root. Writes go through
// a temp file and rename so readers never see partial values.
type Store struct {
	Root string

	mu sync.RWMutex
}

// NewStore creates a filesystem-backed preference store.
func NewStore(root string) *Store {
	return &Store{Root: root}
}

// Get reads the value for key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	_ = ctx
	pathOnDisk, err := s.resolvePath(key)
	if err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(pathOnDisk)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// Set writes value for key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_ = ctx
	pathOnDisk, err := s.resolvePath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(pathOnDisk)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".pref-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.WriteString(value); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), pathOnDisk)
}

// Remove deletes key. Missing keys are not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	_ = ctx
	pathOnDisk, err := s.resolvePath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(pathOnDisk); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) resolvePath(key string) (string, error) {
	if s == nil {
		return "", catalog.NewError(catalog.KindInternal, "store is nil", nil)
	}
	if s.Root == "" {
		return "", catalog.NewError(catalog.KindValidation, "store root is required", nil)
	}

	clean := path.Clean("/" + strings.TrimSpace(key))
	rel := strings.TrimPrefix(clean, "/")
	if rel == "" || rel == "." {
		return "", catalog.NewError(catalog.KindValidation, "invalid preference key", nil)
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(rel)+".json")
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", catalog.NewError(catalog.KindValidation, "preference key escapes root", nil)
	}
	return target, nil
}
