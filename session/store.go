package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStore keeps the token pair in process memory only. Useful for
// tests and short-lived tools.
type MemoryStore struct {
	mu      sync.Mutex
	access  string
	refresh string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, m.refresh, nil
}

func (m *MemoryStore) Save(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	m.refresh = refresh
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = ""
	m.refresh = ""
	return nil
}

// FileStore persists the token pair to a JSON file with 0600 permissions,
// the durable analogue of the browser's origin-scoped storage.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

type storedTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (string, string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", nil
		}
		return "", "", errors.Wrap(err, "[FileStore.Load] read token file")
	}

	var tokens storedTokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return "", "", errors.Wrap(err, "[FileStore.Load] parse token file")
	}
	return tokens.AccessToken, tokens.RefreshToken, nil
}

func (f *FileStore) Save(access, refresh string) error {
	data, err := json.Marshal(storedTokens{AccessToken: access, RefreshToken: refresh})
	if err != nil {
		return errors.Wrap(err, "[FileStore.Save] marshal tokens")
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileStore.Save] create token directory")
	}

	// Write-then-rename so a crash mid-write never corrupts the stored pair.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.Save] write token file")
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(err, "[FileStore.Save] replace token file")
	}
	return nil
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] remove token file")
	}
	return nil
}
