// Package api is the typed client for the capsule backend: auth
// endpoints, capsule CRUD, and the resilient dispatch layer underneath.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/mufeShot/chronocap-frontend/internal/config"
	apperrors "github.com/mufeShot/chronocap-frontend/internal/errors"
	"github.com/mufeShot/chronocap-frontend/internal/model"
	"github.com/mufeShot/chronocap-frontend/internal/session"
)

var numericKeyPattern = regexp.MustCompile(`^[0-9]+$`)

type Client struct {
	dispatcher *Dispatcher
	session    *session.Manager
	origin     string
}

func NewClient(cfg *config.Config, sess *session.Manager) *Client {
	return &Client{
		dispatcher: NewDispatcher(cfg.BaseURL(), cfg.HTTPTimeout(), sess),
		session:    sess,
		origin:     cfg.PublicOrigin(),
	}
}

// authResponse is the wire shape shared by login and register.
type authResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         map[string]any `json:"user"`
}

// Login authenticates with credentials and adopts the returned tokens
// and user into the session.
func (c *Client) Login(ctx context.Context, email, password string) (*model.UserProfile, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account; the response shape matches login.
func (c *Client) Register(ctx context.Context, email, password, name string) (*model.UserProfile, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	if name != "" {
		body["name"] = name
	}
	return c.authenticate(ctx, "/auth/register", body)
}

func (c *Client) authenticate(ctx context.Context, path string, body map[string]string) (*model.UserProfile, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.Internal("encode credentials").WithCause(err)
	}

	var res authResponse
	if err := c.dispatcher.DoJSON(ctx, path, RequestOptions{
		Method:       http.MethodPost,
		Body:         payload,
		ContentType:  "application/json",
		DisableRetry: true,
	}, &res); err != nil {
		return nil, err
	}

	user := normalizeUser(res.User)
	if err := c.session.SetAuth(ctx, res.AccessToken, res.RefreshToken, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Refresh exchanges a refresh token for new tokens. It implements
// session.Refresher; the session layer decides what to adopt.
func (c *Client) Refresh(ctx context.Context, userID, refreshToken string) (*session.RefreshResult, error) {
	payload, err := json.Marshal(map[string]string{
		"userId":        userID,
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, apperrors.Internal("encode refresh request").WithCause(err)
	}

	var res authResponse
	if err := c.dispatcher.DoJSON(ctx, "/auth/refresh", RequestOptions{
		Method:       http.MethodPost,
		Body:         payload,
		ContentType:  "application/json",
		DisableRetry: true,
	}, &res); err != nil {
		return nil, err
	}

	result := &session.RefreshResult{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}
	if res.User != nil {
		result.User = normalizeUser(res.User)
	}
	return result, nil
}

// Logout invalidates the session server-side on a best-effort basis and
// always clears the local session. Network failures never surface.
func (c *Client) Logout(ctx context.Context) {
	if token := c.session.AccessToken(); token != "" {
		payload, _ := json.Marshal(map[string]string{"access_token": token})
		err := c.dispatcher.DoJSON(ctx, "/auth/logout", RequestOptions{
			Method:       http.MethodPost,
			Body:         payload,
			ContentType:  "application/json",
			DisableRetry: true,
		}, nil)
		if err != nil {
			log.Debug().Err(err).Msg("server-side logout failed")
		}
	}
	c.session.Logout(ctx)
}

// ListMyCapsules fetches the caller's capsules.
func (c *Client) ListMyCapsules(ctx context.Context) ([]model.Capsule, error) {
	if c.session.AccessToken() == "" {
		return nil, apperrors.NotAuthenticated()
	}
	return c.listCapsules(ctx, "/capsules")
}

// ListPublicCapsules fetches the public feed; no authentication needed.
func (c *Client) ListPublicCapsules(ctx context.Context) ([]model.Capsule, error) {
	return c.listCapsules(ctx, "/public/capsules")
}

func (c *Client) listCapsules(ctx context.Context, path string) ([]model.Capsule, error) {
	var payload any
	if err := c.dispatcher.DoJSON(ctx, path, RequestOptions{}, &payload); err != nil {
		return nil, err
	}

	records := extractCapsuleList(payload)
	capsules := make([]model.Capsule, 0, len(records))
	for _, record := range records {
		capsules = append(capsules, normalizeCapsule(record, c.origin))
	}
	return capsules, nil
}

// GetCapsuleBySecret resolves a capsule from either an internal numeric
// id or an opaque secret key. The probe ordering is deliberate: ids go
// private-then-public so an authenticated owner sees their own capsule
// first; secrets go public-then-private so unauthenticated lookups never
// touch the private endpoint. A nil capsule with nil error means not
// found.
func (c *Client) GetCapsuleBySecret(ctx context.Context, key string) (*model.Capsule, error) {
	hasToken := c.session.AccessToken() != ""
	escaped := url.PathEscape(key)

	if numericKeyPattern.MatchString(key) {
		if !hasToken {
			return c.fetchQuiet(ctx, "/public/capsules/"+escaped), nil
		}
		return c.getByID(ctx, escaped)
	}

	if capsule := c.fetchQuiet(ctx, "/public/capsules/secret/"+escaped); capsule != nil {
		return capsule, nil
	}
	if hasToken {
		if capsule := c.fetchQuiet(ctx, "/capsules/secret/"+escaped); capsule != nil {
			return capsule, nil
		}
	}
	return nil, nil
}

// getByID is the authenticated numeric-id path: private endpoint first
// (retry-on-401 enabled), public fallback only on 404.
func (c *Client) getByID(ctx context.Context, escaped string) (*model.Capsule, error) {
	res, err := c.dispatcher.Do(ctx, "/capsules/"+escaped, RequestOptions{})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperrors.NetworkFailure(err)
	}

	switch {
	case res.StatusCode == http.StatusNotFound:
		message := extractMessage(payload)
		if message == "" {
			message = "Capsule not found"
		}
		if capsule := c.fetchQuiet(ctx, "/public/capsules/"+escaped); capsule != nil {
			return capsule, nil
		}
		return nil, apperrors.NotFound(message)

	case res.StatusCode == http.StatusForbidden:
		return nil, apperrors.Forbidden(extractMessage(payload))

	case res.StatusCode >= 200 && res.StatusCode < 300:
		var record map[string]any
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, nil
		}
		capsule := normalizeCapsule(record, c.origin)
		return &capsule, nil

	default:
		return nil, nil
	}
}

// fetchQuiet probes an endpoint and swallows every failure; probes must
// never surface errors, only a hit or a miss.
func (c *Client) fetchQuiet(ctx context.Context, path string) *model.Capsule {
	var record map[string]any
	err := c.dispatcher.DoJSON(ctx, path, RequestOptions{DisableRetry: true}, &record)
	if err != nil {
		return nil
	}
	capsule := normalizeCapsule(record, c.origin)
	return &capsule
}
