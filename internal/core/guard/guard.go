// Package guard decides whether the current session may enter a protected
// view. Evaluation is a pure function of (session, requirement); the guard
// never mutates session state.
package guard

import (
	"context"
	"path"
	"strings"

	"github.com/hirehub/portal-core/internal/core/domain"
)

// Outcome is the kind of access decision.
type Outcome int

const (
	Allow Outcome = iota
	Redirect
)

func (o Outcome) String() string {
	if o == Allow {
		return "allow"
	}
	return "redirect"
}

// Reason records which rule produced a decision.
type Reason string

const (
	ReasonPublic               Reason = "public"
	ReasonSessionAbsent        Reason = "session_absent"
	ReasonRoleMismatch         Reason = "role_mismatch"
	ReasonOnboardingIncomplete Reason = "onboarding_incomplete"
	ReasonAllowed              Reason = "allowed"
)

// Decision is the result of evaluating a Requirement.
type Decision struct {
	Outcome Outcome
	Target  string // set when Outcome is Redirect
	Reason  Reason
}

// Allowed reports whether the caller may proceed.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Requirement is what a view declares about who may enter it.
type Requirement struct {
	// Role is the required role, or domain.RoleAny for any authenticated actor.
	Role              domain.Role
	RequiresOnboarded bool
	// Path is the navigation target being entered.
	Path string
}

// Routes are the redirect targets and public exceptions.
type Routes struct {
	Login        string
	Unauthorized string
	Home         string
	Onboarding   map[domain.Role]string
	// PublicPrefixes are sub-paths that stay public even though they sit
	// under a role-protected prefix.
	PublicPrefixes []string
}

// DefaultRoutes returns the platform's standard routes.
func DefaultRoutes() Routes {
	return Routes{
		Login:        "/login",
		Unauthorized: "/unauthorized",
		Home:         "/",
		Onboarding: map[domain.Role]string{
			domain.RoleRecruiter: "/recruiter/onboarding",
			domain.RoleCandidate: "/candidate/onboarding",
		},
		PublicPrefixes: []string{"/recruiter/jobs/"},
	}
}

// Guard evaluates requirements against a session.
type Guard struct {
	routes Routes
	// mismatch maps the required role to the landing page for actors who
	// hold a different role.
	mismatch map[domain.Role]string
}

// New returns a Guard for routes.
func New(routes Routes) *Guard {
	mismatch := map[domain.Role]string{
		domain.RoleAdmin:     routes.Unauthorized,
		domain.RoleRecruiter: routes.Home,
		domain.RoleCandidate: routes.Home,
	}
	return &Guard{routes: routes, mismatch: mismatch}
}

// Routes returns the guard's routes.
func (g *Guard) Routes() Routes { return g.routes }

// Evaluate applies the rules in order; the first match wins. A nil or
// incomplete session counts as no session.
func (g *Guard) Evaluate(sess *domain.Session, req Requirement) Decision {
	target := cleanPath(req.Path)

	if g.isPublic(target) {
		return Decision{Outcome: Allow, Reason: ReasonPublic}
	}

	if sess == nil || !sess.Valid() {
		return g.redirect(g.routes.Login, ReasonSessionAbsent)
	}

	identity := sess.Identity
	if req.Role != domain.RoleAny && identity.Role != req.Role {
		landing, ok := g.mismatch[req.Role]
		if !ok || landing == "" {
			landing = g.routes.Login
		}
		return g.redirect(landing, ReasonRoleMismatch)
	}

	if req.RequiresOnboarded && identity.NeedsOnboarding() {
		onboarding := g.routes.Onboarding[identity.Role]
		if onboarding == "" {
			onboarding = g.routes.Home
		}
		if target != cleanPath(onboarding) {
			return g.redirect(onboarding, ReasonOnboardingIncomplete)
		}
	}

	return Decision{Outcome: Allow, Reason: ReasonAllowed}
}

// SessionSource yields the current session, loading it if needed.
type SessionSource interface {
	Load(ctx context.Context) (domain.Session, bool)
}

// Check loads the session from src and evaluates req. Any fault while
// reading the session fails closed.
func (g *Guard) Check(ctx context.Context, src SessionSource, req Requirement) Decision {
	return g.Evaluate(readSession(ctx, src), req)
}

func readSession(ctx context.Context, src SessionSource) (sess *domain.Session) {
	defer func() {
		if recover() != nil {
			sess = nil
		}
	}()
	if src == nil {
		return nil
	}
	s, ok := src.Load(ctx)
	if !ok {
		return nil
	}
	return &s
}

func (g *Guard) isPublic(p string) bool {
	for _, prefix := range g.routes.PublicPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func (g *Guard) redirect(target string, reason Reason) Decision {
	return Decision{Outcome: Redirect, Target: target, Reason: reason}
}

// cleanPath normalises p so that dot segments cannot reach a public prefix.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
