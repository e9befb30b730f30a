package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/mufeShot/chronocap-frontend/internal/errors"
	"github.com/mufeShot/chronocap-frontend/internal/session"
)

// RequestOptions controls a single dispatch. The zero value is a plain
// GET with retry-on-401 enabled.
type RequestOptions struct {
	Method       string
	Body         []byte
	ContentType  string
	Header       http.Header
	DisableRetry bool
}

// Dispatcher issues HTTP requests with the current bearer token attached
// and retries exactly once after a successful coordinated refresh when a
// request comes back 401. It never retries twice: a second 401 is
// returned to the caller unchanged.
type Dispatcher struct {
	client  *http.Client
	session *session.Manager
	base    string
}

func NewDispatcher(base string, timeout time.Duration, sess *session.Manager) *Dispatcher {
	return &Dispatcher{
		client:  &http.Client{Timeout: timeout},
		session: sess,
		base:    base,
	}
}

// Transport exposes the underlying HTTP client for requests that need a
// custom body, such as progress-reporting uploads.
func (d *Dispatcher) Transport() *http.Client {
	return d.client
}

// BaseURL returns the resolved API base.
func (d *Dispatcher) BaseURL() string {
	return d.base
}

// Do performs the request. The response body is the caller's to close.
func (d *Dispatcher) Do(ctx context.Context, path string, opts RequestOptions) (*http.Response, error) {
	res, err := d.issue(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusUnauthorized || opts.DisableRetry || !d.session.HasRefreshToken() {
		return res, nil
	}

	if err := d.session.RefreshAccessToken(ctx); err != nil {
		// Refresh failed; the session is already logged out. The caller
		// observes the original unauthorized response.
		log.Debug().Str("path", path).Msg("refresh after 401 failed")
		return res, nil
	}

	res.Body.Close()
	return d.issue(ctx, path, opts)
}

func (d *Dispatcher) issue(ctx context.Context, path string, opts RequestOptions) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.base+path, body)
	if err != nil {
		return nil, apperrors.Internal("build request").WithCause(err)
	}

	for key, values := range opts.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	}
	for key, value := range d.session.AuthHeaders() {
		req.Header.Set(key, value)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	log.Debug().Str("method", method).Str("path", path).Msg("dispatching request")

	res, err := d.client.Do(req)
	if err != nil {
		return nil, apperrors.NetworkFailure(err)
	}
	return res, nil
}

// DoJSON performs the request and decodes the JSON body into out (when
// non-nil). On a non-success status it surfaces an error whose message
// comes from a "message" or "error" field of the decoded body when
// present, else a generic "HTTP <status>" message.
func (d *Dispatcher) DoJSON(ctx context.Context, path string, opts RequestOptions, out any) error {
	res, err := d.Do(ctx, path, opts)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return apperrors.NetworkFailure(err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return statusError(res.StatusCode, extractMessage(payload))
	}

	if out == nil {
		return nil
	}
	if len(payload) == 0 {
		return apperrors.InvalidResponse(nil)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.InvalidResponse(err)
	}
	return nil
}

// statusError maps the status onto the error taxonomy, keeping the
// best-effort server message.
func statusError(status int, message string) *apperrors.AppError {
	switch status {
	case http.StatusForbidden:
		return apperrors.Forbidden(message)
	case http.StatusNotFound:
		return apperrors.NotFound(message)
	default:
		return apperrors.HTTPError(status, message)
	}
}

// extractMessage pulls a human-readable message out of an error body.
func extractMessage(payload []byte) string {
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return ""
	}
	if msg, ok := decoded["message"].(string); ok && msg != "" {
		return msg
	}
	if msg, ok := decoded["error"].(string); ok && msg != "" {
		return msg
	}
	return ""
}
