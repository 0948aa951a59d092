package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFileName is the manifest file name used when only a directory is
// known.
const DefaultFileName = "actions.json"

// backupSuffix names the single-generation backup written before each
// save.
const backupSuffix = ".bak"

// FileStore persists the tool manifest as a JSON array on disk. Saves are
// wholesale: the previous file is renamed to its .bak sibling, then the
// new array is written through a temp file and renamed into place. Only
// one backup generation is kept.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a file-based store at the given path. The file
// does not need to exist; a missing file loads as an empty manifest.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultStorePath returns the conventional manifest location,
// ~/.tacklebox/actions.json.
func DefaultStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".tacklebox", DefaultFileName), nil
}

// NewDefaultFileStore creates a file store at DefaultStorePath.
func NewDefaultFileStore() (*FileStore, error) {
	path, err := DefaultStorePath()
	if err != nil {
		return nil, err
	}
	return NewFileStore(path), nil
}

// Path returns the manifest file path.
func (s *FileStore) Path() string { return s.path }

// BackupPath returns the path the previous manifest generation is kept
// at.
func (s *FileStore) BackupPath() string { return s.path + backupSuffix }

// document is the wrapped on-disk form some earlier installs used. Load
// accepts it; Save always writes the plain array.
type document struct {
	Version int      `json:"version"`
	Tools   []Record `json:"tools"`
}

// Load returns the records in file order. A missing file is an empty
// manifest, not an error. Both the plain JSON array and the legacy
// {version, tools} document are accepted.
func (s *FileStore) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path) // #nosec G304 -- path from caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("read manifest file: %w", err)
	}
	if len(data) == 0 {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest file: %w", err)
	}
	if doc.Tools == nil {
		return []Record{}, nil
	}
	return doc.Tools, nil
}

// Save rewrites the manifest wholesale. The current file, when present,
// is renamed to BackupPath first, replacing any previous backup.
func (s *FileStore) Save(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := os.Rename(s.path, s.path+backupSuffix); err != nil {
			return fmt.Errorf("back up previous manifest: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat manifest file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write manifest file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace manifest file: %w", err)
	}
	return nil
}
