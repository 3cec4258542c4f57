package services_test

import (
	"context"

	"github.com/restoka/closing/gate"
	"github.com/restoka/closing/recordapi"
)

// stubClient implements the parts of recordapi.Client a test cares about;
// calling anything else panics via the embedded nil interface.
type stubClient struct {
	recordapi.Client
	login  func(ctx context.Context, userID, pin string) (*recordapi.LoginResult, error)
	fetch  func(ctx context.Context, storeID, businessDate string) (*recordapi.Record, error)
	save   func(ctx context.Context, draft recordapi.ClosingDraft) (*recordapi.Record, error)
	unlock func(ctx context.Context, recordID, managerPIN string) (*recordapi.Record, error)
	patch  func(ctx context.Context, recordID string, fields map[string]any) (*recordapi.Record, error)
	verify func(ctx context.Context, recordID string, status recordapi.VerifiedStatus, verifier, notes string) (*recordapi.Record, error)
	stores func(ctx context.Context) ([]recordapi.Store, error)
}

func (s *stubClient) Login(ctx context.Context, userID, pin string) (*recordapi.LoginResult, error) {
	return s.login(ctx, userID, pin)
}

func (s *stubClient) FetchClosing(ctx context.Context, storeID, businessDate string) (*recordapi.Record, error) {
	return s.fetch(ctx, storeID, businessDate)
}

func (s *stubClient) SaveClosing(ctx context.Context, draft recordapi.ClosingDraft) (*recordapi.Record, error) {
	return s.save(ctx, draft)
}

func (s *stubClient) UnlockClosing(ctx context.Context, recordID, managerPIN string) (*recordapi.Record, error) {
	return s.unlock(ctx, recordID, managerPIN)
}

func (s *stubClient) PatchClosing(ctx context.Context, recordID string, fields map[string]any) (*recordapi.Record, error) {
	return s.patch(ctx, recordID, fields)
}

func (s *stubClient) VerifyClosing(ctx context.Context, recordID string, status recordapi.VerifiedStatus, verifier, notes string) (*recordapi.Record, error) {
	return s.verify(ctx, recordID, status, verifier, notes)
}

func (s *stubClient) ListStores(ctx context.Context) ([]recordapi.Store, error) {
	return s.stores(ctx)
}

// memSessions is an in-memory SessionService for tests that do not need
// scs plumbing.
type memSessions struct {
	established *gate.Session
	saved       *gate.Session
	destroyed   bool
}

func (m *memSessions) Load(ctx context.Context) ([]byte, bool) { return nil, false }

func (m *memSessions) HasAuthToken(ctx context.Context) bool { return m.established != nil }

func (m *memSessions) Save(ctx context.Context, s *gate.Session) error {
	copied := *s
	m.saved = &copied
	return nil
}

func (m *memSessions) Clear(ctx context.Context) error {
	m.established = nil
	m.saved = nil
	return nil
}

func (m *memSessions) Establish(ctx context.Context, s *gate.Session) error {
	copied := *s
	m.established = &copied
	return nil
}

func (m *memSessions) Destroy(ctx context.Context) error {
	m.destroyed = true
	return m.Clear(ctx)
}
