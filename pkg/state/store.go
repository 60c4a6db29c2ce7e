package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/atlaspack/pkg/errors"
)

// ErrNotExist is returned by Store.Load when no state has been saved yet.
var ErrNotExist = errors.New("state does not exist")

// Store holds one encoded snapshot blob.
//
// Only one run may read-modify-write a store at a time; stores do not lock.
type Store interface {
	// Load returns the saved blob, or ErrNotExist.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the saved blob.
	Save(ctx context.Context, data []byte) error

	// Clear removes the saved blob. Clearing a missing blob is not an error.
	Clear(ctx context.Context) error

	// Location describes where the blob lives, for display.
	Location() string

	Close() error
}

// Open returns a store for location: a redis:// or rediss:// URL selects
// Redis, anything else is a file path.
func Open(location string) (Store, error) {
	if strings.HasPrefix(location, "redis://") || strings.HasPrefix(location, "rediss://") {
		return NewRedisStore(location)
	}
	return NewFileStore(location)
}

// LoadSnapshot loads and decodes the snapshot in store. A store with no saved
// state yields (nil, nil).
func LoadSnapshot(ctx context.Context, store Store) (*Snapshot, error) {
	data, err := store.Load(ctx)
	if errors.Is(err, ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", store.Location(), err)
	}
	return s, nil
}

// SaveSnapshot encodes s and writes it to store.
func SaveSnapshot(ctx context.Context, store Store, s *Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	return store.Save(ctx, data)
}

// FileStore keeps the blob in a single file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path. The file need not exist.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errs.New(errs.ErrCodeInvalidPath, "state path cannot be empty")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeRead, err, "read state %s", s.path)
	}
	return data, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the old blob, so an interrupted save leaves the previous state intact.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errs.Wrap(errs.ErrCodeWrite, err, "create state dir")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errs.Wrap(errs.ErrCodeWrite, err, "create temp state file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errs.Wrap(errs.ErrCodeWrite, err, "write state")
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeWrite, err, "write state")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errs.Wrap(errs.ErrCodeWrite, err, "replace state %s", s.path)
	}
	return nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.ErrCodeWrite, err, "remove state %s", s.path)
	}
	return nil
}

func (s *FileStore) Location() string { return s.path }

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
