package session

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/mufeShot/chronocap-frontend/internal/errors"
	"github.com/mufeShot/chronocap-frontend/internal/model"
)

// refreshKey is the single singleflight key: there is at most one
// in-flight refresh process-wide.
const refreshKey = "refresh"

// RefreshResult is what a network refresh yields. An empty RefreshToken
// means the server did not rotate it; a nil User means it sent no
// updated profile.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	User         *model.UserProfile
}

// Refresher performs the network token refresh. Implemented by the API
// client.
type Refresher interface {
	Refresh(ctx context.Context, userID, refreshToken string) (*RefreshResult, error)
}

// RefreshAccessToken exchanges the refresh token for a new access token.
// Concurrent callers collapse into one network call and all observe the
// same outcome. A failed refresh always logs the session out before the
// error propagates; stale tokens never survive a failure.
func (m *Manager) RefreshAccessToken(ctx context.Context) error {
	_, err, _ := m.group.Do(refreshKey, func() (any, error) {
		m.mu.Lock()
		refreshToken := m.refreshToken
		user := m.user
		refresher := m.refresher
		m.mu.Unlock()

		if refreshToken == "" || user == nil {
			return nil, apperrors.NoRefreshToken()
		}
		if refresher == nil {
			return nil, apperrors.Internal("no refresher configured")
		}

		res, err := refresher.Refresh(ctx, user.ID, refreshToken)
		if err != nil {
			m.Logout(ctx)
			return nil, err
		}

		newUser := res.User
		if newUser == nil {
			newUser = user
		}
		return nil, m.SetAuth(ctx, res.AccessToken, res.RefreshToken, newUser)
	})
	return err
}

// InitAuth performs the startup silent refresh: a durable refresh token
// with no access token means a previously logged-in user on a fresh
// process. Failure is swallowed and the user simply stays logged out.
func (m *Manager) InitAuth(ctx context.Context) {
	m.mu.Lock()
	shouldRefresh := m.refreshToken != "" && m.accessToken == ""
	m.mu.Unlock()

	if !shouldRefresh {
		return
	}
	if err := m.RefreshAccessToken(ctx); err != nil {
		log.Debug().Err(err).Msg("silent refresh failed, staying logged out")
	}
}
