// Package guard gates navigation into protected views. It is the Go
// rendition of the router's beforeEach hook: protected targets get one
// silent refresh attempt, and still-unauthenticated navigations are
// redirected home with the auth prompt opened on the original target.
package guard

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mufeShot/chronocap-frontend/internal/session"
)

// HomePath is where rejected navigations land.
const HomePath = "/"

// Route is one entry of the navigation table.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
}

// Prompter is the external UI collaborator that opens the authentication
// prompt, recording the originally requested path for post-login
// redirect.
type Prompter interface {
	OpenAuthPrompt(redirectTo string)
}

type Guard struct {
	session  *session.Manager
	prompter Prompter
	routes   []Route
}

func New(sess *session.Manager, prompter Prompter, routes []Route) *Guard {
	return &Guard{
		session:  sess,
		prompter: prompter,
		routes:   routes,
	}
}

// DefaultRoutes mirrors the application's navigation table.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "home", Path: "/"},
		{Name: "public", Path: "/public"},
		{Name: "dashboard", Path: "/dashboard", RequiresAuth: true},
		{Name: "unlock", Path: "/unlock/:secret"},
	}
}

// Resolve returns the path the navigation should proceed to. Logged-in
// and unprotected navigations pass through unmodified.
func (g *Guard) Resolve(ctx context.Context, target string) string {
	route, ok := g.match(target)
	if !ok || !route.RequiresAuth {
		return target
	}

	if !g.session.IsLoggedIn() && g.session.HasRefreshToken() {
		if err := g.session.RefreshAccessToken(ctx); err != nil {
			log.Debug().Err(err).Str("target", target).Msg("guard refresh failed")
		}
	}

	if !g.session.IsLoggedIn() {
		g.prompter.OpenAuthPrompt(target)
		return HomePath
	}
	return target
}

// match finds the route owning target. Parameterized segments (":x")
// match any non-empty segment.
func (g *Guard) match(target string) (Route, bool) {
	targetSegments := splitPath(target)
	for _, route := range g.routes {
		if matchSegments(splitPath(route.Path), targetSegments) {
			return route, true
		}
	}
	return Route{}, false
}

func splitPath(p string) []string {
	trimmed := strings.Trim(strings.SplitN(p, "?", 2)[0], "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func matchSegments(pattern, target []string) bool {
	if len(pattern) != len(target) {
		return false
	}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			if target[i] == "" {
				return false
			}
			continue
		}
		if seg != target[i] {
			return false
		}
	}
	return true
}
