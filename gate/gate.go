// Package gate decides whether the current actor may see a protected view.
// It has no transport or UI dependencies: callers hand it a session store,
// the requested path and host, and get back a terminal outcome. Every rule
// that can fail degrades to a login redirect, never to an error.
package gate

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// TTL is the sliding session expiration. A session whose lastSeenAt is
// older than this is deleted, not merely flagged.
const TTL = time.Hour

type Role string

const (
	RoleCashier Role = "cashier"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCashier || r == RoleManager || r == RoleAdmin
}

// Home is the path an actor is sent to when it may not see the requested
// view but still holds a valid session.
func (r Role) Home() string {
	if r == RoleCashier {
		return "/cashier"
	}
	return "/admin"
}

type Session struct {
	ActorID string `json:"actorId"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
	// StoreID is the cashier's assigned store. Managers and admins pick a
	// store context explicitly instead (ActiveStoreID).
	StoreID       string    `json:"storeId,omitempty"`
	ActiveStoreID string    `json:"activeStoreId,omitempty"`
	StoreAccess   []string  `json:"storeAccess,omitempty"`
	IssuedAt      time.Time `json:"issuedAt"`
	LastSeenAt    time.Time `json:"lastSeenAt"`
}

// OperatingStore is the store the actor's record operations apply to.
func (s *Session) OperatingStore() string {
	if s.Role == RoleCashier {
		return s.StoreID
	}
	return s.ActiveStoreID
}

// CanAccessStore reports whether the actor may operate against the given
// store. Admins have implicit access to every store.
func (s *Session) CanAccessStore(storeID string) bool {
	if s.Role == RoleAdmin {
		return true
	}
	for _, id := range s.StoreAccess {
		if id == storeID {
			return true
		}
	}
	return false
}

// SessionStore is the persisted client state the gate evaluates and
// mutates. Load returns the raw session blob so the gate itself can treat
// malformed data as an absent session.
type SessionStore interface {
	Load(ctx context.Context) ([]byte, bool)
	HasAuthToken(ctx context.Context) bool
	Save(ctx context.Context, session *Session) error
	Clear(ctx context.Context) error
}

type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectTo
)

// Outcome is the terminal result of one evaluation. Session is only set
// for Allow, Target only for RedirectTo.
type Outcome struct {
	Decision Decision
	Target   string
	Session  *Session
}

func allow(s *Session) Outcome { return Outcome{Decision: Allow, Session: s} }

func toLogin() Outcome { return Outcome{Decision: RedirectToLogin} }

func redirect(target string) Outcome { return Outcome{Decision: RedirectTo, Target: target} }

// Request describes one navigation to a protected view.
type Request struct {
	Path string
	Host string
	// RequiredRoles is an optional caller-supplied allow-list for the
	// specific view being guarded.
	RequiredRoles []Role
}

type Gate struct {
	store     SessionStore
	adminHost string
	rules     []rule

	// Now is the evaluation clock. Overridable in tests; defaults to
	// time.Now.
	Now func() time.Time
}

func New(store SessionStore, adminHost string) *Gate {
	g := &Gate{
		store:     store,
		adminHost: strings.ToLower(adminHost),
		Now:       time.Now,
	}
	g.rules = []rule{
		{"presence", g.checkPresence},
		{"parse", g.checkParse},
		{"expiry", g.checkExpiry},
		{"refresh", g.refresh},
		{"login-bypass", g.loginBypass},
		{"admin-host", g.checkAdminHost},
		{"admin-path", g.checkAdminPath},
		{"cashier-path", g.checkCashierPath},
		{"required-roles", g.checkRequiredRoles},
	}
	return g
}

type evaluation struct {
	ctx     context.Context
	req     Request
	now     time.Time
	raw     []byte
	session *Session
}

// A rule either decides the outcome (done == true) or passes evaluation on
// to the next rule. Order matters: later rules assume earlier ones passed.
type rule struct {
	name string
	eval func(*evaluation) (Outcome, bool)
}

// Evaluate runs the rule table top to bottom and returns a terminal
// outcome. It never panics; corrupt input resolves to a login redirect.
func (g *Gate) Evaluate(ctx context.Context, req Request) Outcome {
	e := &evaluation{ctx: ctx, req: req, now: g.Now()}
	for _, r := range g.rules {
		if outcome, done := r.eval(e); done {
			return outcome
		}
	}
	return allow(e.session)
}

func (g *Gate) checkPresence(e *evaluation) (Outcome, bool) {
	raw, ok := g.store.Load(e.ctx)
	if !ok || !g.store.HasAuthToken(e.ctx) {
		return toLogin(), true
	}
	e.raw = raw
	return Outcome{}, false
}

func (g *Gate) checkParse(e *evaluation) (Outcome, bool) {
	var s Session
	if err := json.Unmarshal(e.raw, &s); err != nil || s.ActorID == "" || !s.Role.Valid() {
		g.store.Clear(e.ctx)
		return toLogin(), true
	}
	e.session = &s
	return Outcome{}, false
}

func (g *Gate) checkExpiry(e *evaluation) (Outcome, bool) {
	last := e.session.LastSeenAt
	if last.IsZero() || e.now.Sub(last) > TTL {
		g.store.Clear(e.ctx)
		return toLogin(), true
	}
	return Outcome{}, false
}

func (g *Gate) refresh(e *evaluation) (Outcome, bool) {
	e.session.LastSeenAt = e.now
	if err := g.store.Save(e.ctx, e.session); err != nil {
		return toLogin(), true
	}
	return Outcome{}, false
}

func (g *Gate) loginBypass(e *evaluation) (Outcome, bool) {
	if e.req.Path == "/login" {
		return allow(e.session), true
	}
	return Outcome{}, false
}

func (g *Gate) checkAdminHost(e *evaluation) (Outcome, bool) {
	if g.adminHost == "" || hostname(e.req.Host) != g.adminHost {
		return Outcome{}, false
	}
	if role := e.session.Role; role != RoleManager && role != RoleAdmin {
		g.store.Clear(e.ctx)
		return toLogin(), true
	}
	return Outcome{}, false
}

func (g *Gate) checkAdminPath(e *evaluation) (Outcome, bool) {
	if !strings.HasPrefix(e.req.Path, "/admin") {
		return Outcome{}, false
	}
	// The session is retained here: the actor is authenticated, just not
	// allowed on this path.
	if role := e.session.Role; role != RoleManager && role != RoleAdmin {
		return toLogin(), true
	}
	return Outcome{}, false
}

func (g *Gate) checkCashierPath(e *evaluation) (Outcome, bool) {
	if !strings.HasPrefix(e.req.Path, "/cashier") {
		return Outcome{}, false
	}
	switch e.session.Role {
	case RoleCashier:
		return allow(e.session), true
	case RoleManager, RoleAdmin:
		// Managers and admins need an explicit store context before they
		// can act as a cashier.
		if e.session.ActiveStoreID == "" {
			return toLogin(), true
		}
		return allow(e.session), true
	default:
		return toLogin(), true
	}
}

func (g *Gate) checkRequiredRoles(e *evaluation) (Outcome, bool) {
	if len(e.req.RequiredRoles) == 0 {
		return Outcome{}, false
	}
	for _, r := range e.req.RequiredRoles {
		if e.session.Role == r {
			return Outcome{}, false
		}
	}
	return redirect(e.session.Role.Home()), true
}

func hostname(host string) string {
	host = strings.ToLower(host)
	if i := strings.LastIndex(host, ":"); i != -1 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}
