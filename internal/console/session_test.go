package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/response"
)

func newTestStore(t *testing.T) *FileTokenStore {
	t.Helper()
	store, err := NewFileTokenStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	return store
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, data interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(response.Envelope{Data: data}))
}

func writeError(t *testing.T, w http.ResponseWriter, appErr *appErrors.Error) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	require.NoError(t, json.NewEncoder(w).Encode(response.Envelope{Error: appErr}))
}

func TestSessionResolvesProfileOnce(t *testing.T) {
	var profileCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		profileCalls.Add(1)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		writeEnvelope(t, w, http.StatusOK, models.UserInfo{ID: "u1", Email: "ops@example.com", Role: models.RoleOperator})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save("access-1", "refresh-1"))
	session := NewSession(NewClient(srv.URL, store, time.Second), store)

	first, err := session.Profile(context.Background())
	require.NoError(t, err)
	second, err := session.Profile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "u1", first.ID)
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), profileCalls.Load())
}

func TestSessionSurfacesIncompleteProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		writeError(t, w, appErrors.ErrIncompleteProfile)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save("access-1", "refresh-1"))
	session := NewSession(NewClient(srv.URL, store, time.Second), store)

	_, err := session.Profile(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrIncompleteProfile)

	// The broken token is gone, the session resolves signed out.
	assert.Empty(t, store.Token())
	assert.False(t, session.Authenticated())
}

func TestSessionDiscardsRejectedToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		writeError(t, w, appErrors.ErrUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save("stale-token", "stale-refresh"))
	session := NewSession(NewClient(srv.URL, store, time.Second), store)

	_, err := session.Profile(context.Background())
	require.Error(t, err)

	assert.Empty(t, store.Token())
	assert.Empty(t, store.RefreshToken())
	assert.False(t, session.Authenticated())

	// Once discarded, the session short-circuits without calling the API.
	_, err = session.Profile(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSessionProfileWithoutToken(t *testing.T) {
	store := newTestStore(t)
	session := NewSession(NewClient("http://127.0.0.1:0", store, time.Second), store)

	_, err := session.Profile(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSessionLoginPersistsTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "admin@example.com", req.Email)
		writeEnvelope(t, w, http.StatusOK, models.LoginResponse{
			AccessToken:  "access-2",
			RefreshToken: "refresh-2",
			User:         models.UserInfo{ID: "u2", Role: models.RoleAdmin},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newTestStore(t)
	session := NewSession(NewClient(srv.URL, store, time.Second), store)

	profile, err := session.Login(context.Background(), "admin@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, profile.Role)
	assert.Equal(t, "access-2", store.Token())
	assert.Equal(t, "refresh-2", store.RefreshToken())

	// The login response already carries the profile, no extra round trip.
	cached, err := session.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u2", cached.ID)
}

func TestSessionLogoutClearsStateEvenWhenRevokeFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeError(t, w, appErrors.ErrUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save("access-3", "refresh-3"))
	session := NewSession(NewClient(srv.URL, store, time.Second), store)

	err := session.Logout(context.Background())
	assert.Error(t, err)
	assert.False(t, session.Authenticated())
	assert.Empty(t, store.Token())
}

func TestGuardDecisions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, models.UserInfo{ID: "u1", Role: models.RoleOperator})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	signedOut := newTestStore(t)
	guard := NewGuard(NewSession(NewClient(srv.URL, signedOut, time.Second), signedOut))
	assert.Equal(t, DecisionLogin, guard.Evaluate(context.Background(), "/dashboard"))

	store := newTestStore(t)
	require.NoError(t, store.Save("access-1", "refresh-1"))
	guard = NewGuard(NewSession(NewClient(srv.URL, store, time.Second), store))

	assert.Equal(t, DecisionAllow, guard.Evaluate(context.Background(), "/dashboard"))
	assert.Equal(t, DecisionAllow, guard.Evaluate(context.Background(), "/incidents"))
	assert.Equal(t, DecisionAllow, guard.Evaluate(context.Background(), models.LandingRoute))
	assert.Equal(t, DecisionLanding, guard.Evaluate(context.Background(), "/admin"))
	assert.Equal(t, DecisionLanding, guard.Evaluate(context.Background(), "/response-rules"))
	assert.Equal(t, DecisionLanding, guard.Evaluate(context.Background(), "/no-such-route"))
}

func TestGuardSignsOutOnDeadToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		writeError(t, w, appErrors.ErrSessionExpired)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save("expired-token", "expired-refresh"))
	session := NewSession(NewClient(srv.URL, store, time.Second), store)
	guard := NewGuard(session)

	assert.Equal(t, DecisionLogin, guard.Evaluate(context.Background(), "/dashboard"))
	assert.Empty(t, store.Token())
	assert.False(t, session.Authenticated())
}
