// Package session holds the client's authentication credentials and
// persists them across process restarts.
package session

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Fixed storage keys for the persisted credentials.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Store is the explicit session object injected into the HTTP client.
// Tokens are read from storage once, in Open, and written through on change.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	access  string
	refresh string
}

// Open restores any persisted tokens from storage.
func Open(storage Storage) (*Store, error) {
	s := &Store{storage: storage}

	access, _, err := storage.Get(AccessTokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read access token: %w", err)
	}
	refresh, _, err := storage.Get(RefreshTokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh token: %w", err)
	}
	s.access, s.refresh = access, refresh
	return s, nil
}

// Token returns the current access token, or "" when none is set.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// GetToken returns the current access token and whether one is set.
func (s *Store) GetToken() (string, bool) {
	t := s.Token()
	return t, t != ""
}

// RefreshToken returns the stored refresh token, if any.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// SetToken sets the access token. An empty token removes it.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(AccessTokenKey, token); err != nil {
		return err
	}
	s.access = token
	return nil
}

// SetTokens replaces both credentials.
func (s *Store) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(AccessTokenKey, access); err != nil {
		return err
	}
	if err := s.write(RefreshTokenKey, refresh); err != nil {
		return err
	}
	s.access, s.refresh = access, refresh
	return nil
}

// IsAuthenticated is a presence check only; the token is not validated.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Clear drops both tokens locally. Storage failures are logged, the
// in-memory session is cleared regardless.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access, s.refresh = "", ""
	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		if err := s.storage.Remove(key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to remove persisted token")
		}
	}
}

func (s *Store) write(key, value string) error {
	var err error
	if value == "" {
		err = s.storage.Remove(key)
	} else {
		err = s.storage.Set(key, value)
	}
	if err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}
