// Package store provides the durable key/value storage backing the
// session: the refresh token and the cached user profile survive process
// restarts through it. Absence of a key means "no value"; an empty string
// is never used as a sentinel.
package store

import "context"

// Well-known session keys. These are the only two entries the session
// layer maintains.
const (
	KeyRefreshToken = "refresh_token"
	KeyAuthUser     = "auth_user"
)

type Store interface {
	// Get returns the value for key. The second return reports presence.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
