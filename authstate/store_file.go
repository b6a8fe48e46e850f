package authstate

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileStore persists the PendingState record as a JSON file so that a
// sign-in attempt survives an app restart between BeginSignIn and the
// callback. Writes go through a temp file and rename, so a callback that
// arrives immediately after Save returns always observes a complete record.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path. The parent directory is
// created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(state PendingState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(ErrStorage, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(ErrStorage, err.Error())
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(ErrStorage, err.Error())
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(ErrStorage, err.Error())
	}
	return nil
}

func (s *FileStore) Load() (*PendingState, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(ErrStorage, err.Error())
	}

	var state PendingState
	if err := json.Unmarshal(data, &state); err != nil {
		// A corrupt record is treated as "not found" rather than an error,
		// the same as an absent one. The caller rejects the callback with
		// NoPendingState and the next sign-in overwrites the slot.
		return nil, nil
	}
	return &state, nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(ErrStorage, err.Error())
	}
	return nil
}
