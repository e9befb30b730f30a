// Package session holds the process-wide authentication state: the
// in-memory access token, the durable refresh token, and the cached user
// profile. All mutations go through SetAuth/Logout so the persisted
// entries never drift from memory.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/mufeShot/chronocap-frontend/internal/errors"
	"github.com/mufeShot/chronocap-frontend/internal/model"
	"github.com/mufeShot/chronocap-frontend/internal/store"
)

// Manager is the single session instance for a running client. The access
// token lives in memory only; refresh token and user profile are written
// through to the durable store on every mutation.
type Manager struct {
	store store.Store

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	user         *model.UserProfile

	refresher Refresher
	group     singleflight.Group
}

// New builds a Manager and loads any persisted session material. A
// malformed persisted user is discarded rather than failing startup.
func New(ctx context.Context, st store.Store) (*Manager, error) {
	m := &Manager{store: st}

	token, ok, err := st.Get(ctx, store.KeyRefreshToken)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if ok {
		m.refreshToken = token
	}

	raw, ok, err := st.Get(ctx, store.KeyAuthUser)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if ok {
		var user model.UserProfile
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			log.Warn().Err(err).Msg("discarding malformed persisted user")
		} else {
			m.user = &user
		}
	}

	return m, nil
}

// SetRefresher wires the collaborator that performs the network refresh.
// The API client implements it; wiring happens after both sides exist.
func (m *Manager) SetRefresher(r Refresher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresher = r
}

// SetAuth atomically replaces the access token and user, and rotates the
// refresh token only when a non-empty one is supplied (servers may omit
// an unchanged token). Persisted entries are updated to match.
func (m *Manager) SetAuth(ctx context.Context, access, refresh string, user *model.UserProfile) error {
	m.mu.Lock()
	m.accessToken = access
	if refresh != "" {
		m.refreshToken = refresh
	}
	m.user = user
	currentRefresh := m.refreshToken
	m.mu.Unlock()

	return m.persist(ctx, currentRefresh, user)
}

// Logout clears the session locally and removes the persisted entries.
// It never performs a network call; server-side invalidation is a
// separate best-effort operation owned by the API client.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.accessToken = ""
	m.refreshToken = ""
	m.user = nil
	m.mu.Unlock()

	if err := m.persist(ctx, "", nil); err != nil {
		log.Warn().Err(err).Msg("failed to clear persisted session")
	}
}

func (m *Manager) persist(ctx context.Context, refresh string, user *model.UserProfile) error {
	if refresh != "" {
		if err := m.store.Set(ctx, store.KeyRefreshToken, refresh); err != nil {
			return apperrors.Storage(err)
		}
	} else {
		if err := m.store.Delete(ctx, store.KeyRefreshToken); err != nil {
			return apperrors.Storage(err)
		}
	}

	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return apperrors.Storage(err)
		}
		if err := m.store.Set(ctx, store.KeyAuthUser, string(raw)); err != nil {
			return apperrors.Storage(err)
		}
	} else {
		if err := m.store.Delete(ctx, store.KeyAuthUser); err != nil {
			return apperrors.Storage(err)
		}
	}

	return nil
}

// IsLoggedIn reports whether both an access token and a user are held.
func (m *Manager) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken != "" && m.user != nil
}

// UserEmail returns the signed-in user's email, or "" when logged out.
func (m *Manager) UserEmail() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return ""
	}
	return m.user.Email
}

// User returns a copy of the current user profile, or nil.
func (m *Manager) User() *model.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken
}

func (m *Manager) HasRefreshToken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshToken != ""
}

// AuthHeaders returns the Authorization header when an access token is
// present, otherwise an empty map.
func (m *Manager) AuthHeaders() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.accessToken == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + m.accessToken}
}
