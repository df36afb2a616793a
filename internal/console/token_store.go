package console

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Credentials is the persisted session state. The profile is never stored,
// it is resolved from the access token on demand.
type Credentials struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	SavedAt      time.Time `json:"savedAt"`
}

// FileTokenStore persists credentials to a single JSON file so a console
// session survives restarts. It satisfies TokenSource.
type FileTokenStore struct {
	mu    sync.RWMutex
	path  string
	creds Credentials
}

// NewFileTokenStore loads any existing credentials from path. A missing
// file is not an error, the store just starts empty.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	store := &FileTokenStore{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	if err := json.Unmarshal(raw, &store.creds); err != nil {
		// A corrupt token file behaves like a signed-out session.
		store.creds = Credentials{}
	}
	return store, nil
}

// Token returns the current access token, empty when signed out.
func (s *FileTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken
}

// RefreshToken returns the persisted refresh token.
func (s *FileTokenStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.RefreshToken
}

// Save persists a new token pair, replacing whatever was stored.
func (s *FileTokenStore) Save(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SavedAt:      time.Now().UTC(),
	}
	return s.write()
}

// Clear wipes the stored credentials.
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) write() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("token dir: %w", err)
	}
	raw, err := json.MarshalIndent(s.creds, "", "  ")
	if err != nil {
		return err
	}
	// Tokens are secrets, keep the file owner-only.
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}
