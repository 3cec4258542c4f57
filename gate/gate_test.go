package gate_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoka/closing/gate"
)

type memStore struct {
	raw     []byte
	present bool
	token   bool
	saved   *gate.Session
	cleared bool
	saveErr error
}

func (m *memStore) Load(ctx context.Context) ([]byte, bool) {
	return m.raw, m.present
}

func (m *memStore) HasAuthToken(ctx context.Context) bool {
	return m.token
}

func (m *memStore) Save(ctx context.Context, s *gate.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := *s
	m.saved = &copied
	m.raw, _ = json.Marshal(s)
	return nil
}

func (m *memStore) Clear(ctx context.Context) error {
	m.raw = nil
	m.present = false
	m.token = false
	m.saved = nil
	m.cleared = true
	return nil
}

func storeWith(t *testing.T, s gate.Session) *memStore {
	t.Helper()
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	return &memStore{raw: raw, present: true, token: true}
}

func newGate(store gate.SessionStore, adminHost string, now time.Time) *gate.Gate {
	g := gate.New(store, adminHost)
	g.Now = func() time.Time { return now }
	return g
}

func session(role gate.Role, activeStore string, lastSeen time.Time) gate.Session {
	return gate.Session{
		ActorID:       "usr_01",
		Name:          "Aki",
		Role:          role,
		ActiveStoreID: activeStore,
		StoreAccess:   []string{"store-1", "store-2"},
		IssuedAt:      lastSeen,
		LastSeenAt:    lastSeen,
	}
}

func TestExpiredSessionRedirectsToLoginAndClears(t *testing.T) {
	now := time.Now()
	store := storeWith(t, session(gate.RoleAdmin, "", now.Add(-61*time.Minute)))
	g := newGate(store, "", now)

	out := g.Evaluate(context.Background(), gate.Request{Path: "/admin"})

	assert.Equal(t, gate.RedirectToLogin, out.Decision)
	assert.True(t, store.cleared)
}

func TestFreshSessionIsRefreshed(t *testing.T) {
	now := time.Now()
	store := storeWith(t, session(gate.RoleAdmin, "", now.Add(-30*time.Minute)))
	g := newGate(store, "", now)

	out := g.Evaluate(context.Background(), gate.Request{Path: "/admin"})

	assert.Equal(t, gate.Allow, out.Decision)
	require.NotNil(t, store.saved)
	assert.True(t, store.saved.LastSeenAt.Equal(now))
	require.NotNil(t, out.Session)
	assert.True(t, out.Session.LastSeenAt.Equal(now))
}

func TestMissingLastSeenAtCountsAsExpired(t *testing.T) {
	now := time.Now()
	s := session(gate.RoleCashier, "", now)
	s.LastSeenAt = time.Time{}
	store := storeWith(t, s)
	g := newGate(store, "", now)

	out := g.Evaluate(context.Background(), gate.Request{Path: "/cashier"})

	assert.Equal(t, gate.RedirectToLogin, out.Decision)
	assert.True(t, store.cleared)
}

func TestCashierOnCashierPathAllowedWithoutActiveStore(t *testing.T) {
	now := time.Now()
	for _, activeStore := range []string{"", "store-1"} {
		store := storeWith(t, session(gate.RoleCashier, activeStore, now))
		g := newGate(store, "", now)

		out := g.Evaluate(context.Background(), gate.Request{Path: "/cashier"})

		assert.Equal(t, gate.Allow, out.Decision)
	}
}

func TestManagerOnCashierPathNeedsActiveStore(t *testing.T) {
	now := time.Now()

	store := storeWith(t, session(gate.RoleManager, "", now))
	out := newGate(store, "", now).Evaluate(context.Background(), gate.Request{Path: "/cashier"})
	assert.Equal(t, gate.RedirectToLogin, out.Decision)

	store = storeWith(t, session(gate.RoleManager, "store-1", now))
	out = newGate(store, "", now).Evaluate(context.Background(), gate.Request{Path: "/cashier"})
	assert.Equal(t, gate.Allow, out.Decision)
}

func TestCashierOnAdminPathRedirectsWithoutClearing(t *testing.T) {
	now := time.Now()
	store := storeWith(t, session(gate.RoleCashier, "", now))
	g := newGate(store, "", now)

	out := g.Evaluate(context.Background(), gate.Request{Path: "/admin/users"})

	assert.Equal(t, gate.RedirectToLogin, out.Decision)
	assert.False(t, store.cleared)
	// the refresh already happened, so the session record is still there
	assert.True(t, store.present)
}

func TestLoginPathBypassesRoleRules(t *testing.T) {
	now := time.Now()
	store := storeWith(t, session(gate.RoleCashier, "", now))
	g := newGate(store, "admin.example.com", now)

	out := g.Evaluate(context.Background(), gate.Request{Path: "/login", Host: "admin.example.com"})

	assert.Equal(t, gate.Allow, out.Decision)
}

func TestLoginPathDoesNotBypassExpiry(t *testing.T) {
	now := time.Now()
	store := storeWith(t, session(gate.RoleCashier, "", now.Add(-2*time.Hour)))
	g := newGate(store, "", now)

	out := g.Evaluate(context.Background(), gate.Request{Path: "/login"})

	assert.Equal(t, gate.RedirectToLogin, out.Decision)
	assert.True(t, store.cleared)
}

func TestNoSessionRedirectsToLogin(t *testing.T) {
	now := time.Now()
	store := &memStore{}
	g := newGate(store, "", now)

	out := g.Evaluate(context.Background(), gate.Request{Path: "/cashier"})

	assert.Equal(t, gate.RedirectToLogin, out.Decision)
	// step 1 redirects without touching the store
	assert.False(t, store.cleared)
}

func TestMissingAuthTokenRedirectsToLogin(t *testing.T) {
	now := time.Now()
	store := storeWith(t, session(gate.RoleAdmin, "", now))
	store.token = false
	g := newGate(store, "", now)

	out := g.Evaluate(context.Background(), gate.Request{Path: "/admin"})

	assert.Equal(t, gate.RedirectToLogin, out.Decision)
}

func TestMalformedSessionClearsAndRedirects(t *testing.T) {
	now := time.Now()
	for _, raw := range [][]byte{[]byte("{nope"), []byte(`{"name":"x"}`), []byte(`{"actorId":"a","role":"owner"}`)} {
		store := &memStore{raw: raw, present: true, token: true}
		g := newGate(store, "", now)

		out := g.Evaluate(context.Background(), gate.Request{Path: "/cashier"})

		assert.Equal(t, gate.RedirectToLogin, out.Decision)
		assert.True(t, store.cleared)
	}
}

func TestAdminHostRejectsCashierAndClears(t *testing.T) {
	now := time.Now()
	store := storeWith(t, session(gate.RoleCashier, "", now))
	g := newGate(store, "admin.example.com", now)

	out := g.Evaluate(context.Background(), gate.Request{Path: "/", Host: "admin.example.com:443"})

	assert.Equal(t, gate.RedirectToLogin, out.Decision)
	assert.True(t, store.cleared)
}

func TestAdminHostAllowsManager(t *testing.T) {
	now := time.Now()
	store := storeWith(t, session(gate.RoleManager, "store-1", now))
	g := newGate(store, "admin.example.com", now)

	out := g.Evaluate(context.Background(), gate.Request{Path: "/admin", Host: "ADMIN.example.com"})

	assert.Equal(t, gate.Allow, out.Decision)
}

func TestRequiredRolesRedirectsToRoleHome(t *testing.T) {
	now := time.Now()

	store := storeWith(t, session(gate.RoleCashier, "", now))
	out := newGate(store, "", now).Evaluate(context.Background(), gate.Request{
		Path:          "/verify",
		RequiredRoles: []gate.Role{gate.RoleManager, gate.RoleAdmin},
	})
	assert.Equal(t, gate.RedirectTo, out.Decision)
	assert.Equal(t, "/cashier", out.Target)

	store = storeWith(t, session(gate.RoleManager, "store-1", now))
	out = newGate(store, "", now).Evaluate(context.Background(), gate.Request{
		Path:          "/verify",
		RequiredRoles: []gate.Role{gate.RoleAdmin},
	})
	assert.Equal(t, gate.RedirectTo, out.Decision)
	assert.Equal(t, "/admin", out.Target)

	store = storeWith(t, session(gate.RoleAdmin, "", now))
	out = newGate(store, "", now).Evaluate(context.Background(), gate.Request{
		Path:          "/verify",
		RequiredRoles: []gate.Role{gate.RoleManager, gate.RoleAdmin},
	})
	assert.Equal(t, gate.Allow, out.Decision)
}

func TestEvaluateIsIdempotentAtFixedTime(t *testing.T) {
	now := time.Now()
	store := storeWith(t, session(gate.RoleManager, "store-2", now.Add(-10*time.Minute)))
	g := newGate(store, "", now)
	req := gate.Request{Path: "/cashier"}

	first := g.Evaluate(context.Background(), req)
	second := g.Evaluate(context.Background(), req)

	assert.Equal(t, first.Decision, second.Decision)
	assert.Equal(t, first.Target, second.Target)
	assert.True(t, store.saved.LastSeenAt.Equal(now))
}

func TestExpiryTakesPrecedenceOverPathRules(t *testing.T) {
	now := time.Now()
	store := storeWith(t, session(gate.RoleManager, "store-1", now.Add(-61*time.Minute)))
	g := newGate(store, "", now)

	out := g.Evaluate(context.Background(), gate.Request{Path: "/cashier"})

	assert.Equal(t, gate.RedirectToLogin, out.Decision)
	assert.True(t, store.cleared)
}

func TestFailedRefreshDegradesToLogin(t *testing.T) {
	now := time.Now()
	store := storeWith(t, session(gate.RoleAdmin, "", now))
	store.saveErr = errors.New("disk full")
	g := newGate(store, "", now)

	out := g.Evaluate(context.Background(), gate.Request{Path: "/admin"})

	assert.Equal(t, gate.RedirectToLogin, out.Decision)
}

func TestCanAccessStore(t *testing.T) {
	s := session(gate.RoleManager, "", time.Now())
	assert.True(t, s.CanAccessStore("store-1"))
	assert.False(t, s.CanAccessStore("store-9"))

	s.Role = gate.RoleAdmin
	assert.True(t, s.CanAccessStore("store-9"))
}
