package persistence

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/go-pkgz/lgr"
)

// File is a storage slot backed by a single JSON file. An absent file means
// the slot was never written.
type File struct {
	path string
}

// NewFile makes a file slot at the given path, creating parent directories
func NewFile(path string) (*File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to make slot directory %s: %w", dir, err)
		}
	}
	return &File{path: path}, nil
}

// Load reads the slot payload, ok=false when the file does not exist
func (f *File) Load() (data []byte, ok bool, err error) {
	data, err = os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read slot file %s: %w", f.path, err)
	}
	return data, true, nil
}

// Save writes the payload via a temp file and rename to avoid torn writes
func (f *File) Save(data []byte) error {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write slot temp file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace slot file %s: %w", f.path, err)
	}
	log.Printf("[DEBUG] saved %d bytes to %s", len(data), f.path)
	return nil
}

// Clear removes the slot file, clearing an absent slot is fine
func (f *File) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove slot file %s: %w", f.path, err)
	}
	return nil
}

func (f *File) String() string {
	return fmt.Sprintf("file slot at %s", f.path)
}
