package console

import (
	"context"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
)

// Decision is the outcome of a route guard check.
type Decision int

const (
	// DecisionAllow lets the navigation proceed.
	DecisionAllow Decision = iota
	// DecisionLogin redirects an unauthenticated session to the login view.
	DecisionLogin
	// DecisionLanding redirects an authenticated but unauthorized session
	// to the landing view.
	DecisionLanding
)

// String renders the decision for logs.
func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionLogin:
		return "login"
	case DecisionLanding:
		return "landing"
	default:
		return "unknown"
	}
}

// Guard decides whether the current session may open a route. The three
// outcomes are distinct: no session goes to login, an insufficient role
// goes to landing, everything else proceeds.
type Guard struct {
	session *Session
}

// NewGuard builds a guard over the session.
func NewGuard(session *Session) *Guard {
	return &Guard{session: session}
}

// Evaluate checks a route against the session. The landing route itself is
// always allowed for authenticated users. Unknown routes are denied.
func (g *Guard) Evaluate(ctx context.Context, route string) Decision {
	if !g.session.Authenticated() {
		return DecisionLogin
	}

	profile, err := g.session.Profile(ctx)
	if err != nil {
		// A token the server no longer accepts means sign in again.
		return DecisionLogin
	}

	if route == models.LandingRoute {
		return DecisionAllow
	}

	for _, entry := range models.NavigationEntries {
		if entry.Route != route {
			continue
		}
		if profile.Role.In(entry.Roles...) {
			return DecisionAllow
		}
		return DecisionLanding
	}
	return DecisionLanding
}
