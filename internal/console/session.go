package console

import (
	"context"
	"errors"
	"sync"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

// ErrNotAuthenticated is returned when no session token is stored.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session resolves and caches the signed-in user's profile. The profile is
// fetched from the API at most once per token; a login or logout invalidates
// the cache so a different user can never observe a stale profile.
type Session struct {
	client *Client
	tokens *FileTokenStore

	mu           sync.Mutex
	profile      *models.UserInfo
	profileToken string
}

// NewSession wires a session over the API client and token store.
func NewSession(client *Client, tokens *FileTokenStore) *Session {
	return &Session{client: client, tokens: tokens}
}

// Login authenticates, persists the token pair and primes the profile cache.
func (s *Session) Login(ctx context.Context, email, password string) (*models.UserInfo, error) {
	result, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(result.AccessToken, result.RefreshToken); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.profile = &result.User
	s.profileToken = result.AccessToken
	s.mu.Unlock()

	return &result.User, nil
}

// Profile returns the signed-in user's profile, resolving it from the API
// on first use. A profile record missing required fields surfaces as
// ErrIncompleteProfile rather than a zero-valued profile.
func (s *Session) Profile(ctx context.Context) (*models.UserInfo, error) {
	token := s.tokens.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	s.mu.Lock()
	if s.profile != nil && s.profileToken == token {
		cached := s.profile
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	profile, err := s.client.Profile(ctx)
	if err != nil {
		// A token that cannot resolve a profile is discarded so the
		// next check starts signed out.
		s.discard()
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrIncompleteProfile.Code {
			return nil, appErrors.ErrIncompleteProfile
		}
		return nil, err
	}

	s.mu.Lock()
	s.profile = profile
	s.profileToken = token
	s.mu.Unlock()

	return profile, nil
}

func (s *Session) discard() {
	s.mu.Lock()
	s.profile = nil
	s.profileToken = ""
	s.mu.Unlock()
	_ = s.tokens.Clear()
}

// Role returns the resolved role, empty when signed out.
func (s *Session) Role(ctx context.Context) models.UserRole {
	profile, err := s.Profile(ctx)
	if err != nil {
		return ""
	}
	return profile.Role
}

// Authenticated reports whether a token is stored. It says nothing about
// whether the token is still valid server side.
func (s *Session) Authenticated() bool {
	return s.tokens.Token() != ""
}

// Logout revokes the refresh token and clears all local state. Local state
// is cleared even when the revoke call fails so the console always ends up
// signed out.
func (s *Session) Logout(ctx context.Context) error {
	refresh := s.tokens.RefreshToken()

	var revokeErr error
	if refresh != "" {
		revokeErr = s.client.Logout(ctx, refresh)
	}

	s.mu.Lock()
	s.profile = nil
	s.profileToken = ""
	s.mu.Unlock()

	if err := s.tokens.Clear(); err != nil {
		return err
	}
	return revokeErr
}
