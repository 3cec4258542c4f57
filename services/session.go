package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexedwards/scs/v2"

	"github.com/restoka/closing/gate"
)

const (
	sessionDataKey = "session"
	authMarkerKey  = "authToken"
)

// SessionService persists the actor's session blob and auth token marker
// inside the server-side session managed by scs. It is the gate's
// SessionStore: the gate never touches scs directly.
type SessionService interface {
	gate.SessionStore

	// Establish rotates the session token and stores a freshly
	// authenticated actor.
	Establish(ctx context.Context, session *gate.Session) error
	// Destroy drops all session state for the current actor.
	Destroy(ctx context.Context) error
}

type sessionService struct {
	manager *scs.SessionManager
	signer  *TokenSigner
}

func NewSessionService(manager *scs.SessionManager, signer *TokenSigner) SessionService {
	return &sessionService{
		manager: manager,
		signer:  signer,
	}
}

func (s *sessionService) Load(ctx context.Context) ([]byte, bool) {
	raw, ok := s.manager.Get(ctx, sessionDataKey).([]byte)
	if !ok || len(raw) == 0 {
		return nil, false
	}
	return raw, true
}

func (s *sessionService) HasAuthToken(ctx context.Context) bool {
	marker, ok := s.manager.Get(ctx, authMarkerKey).(string)
	return ok && s.signer.Verify(marker)
}

func (s *sessionService) Save(ctx context.Context, session *gate.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.manager.Put(ctx, sessionDataKey, raw)
	return nil
}

func (s *sessionService) Clear(ctx context.Context) error {
	if err := s.manager.Destroy(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *sessionService) Establish(ctx context.Context, session *gate.Session) error {
	if err := s.manager.RenewToken(ctx); err != nil {
		return fmt.Errorf("establish session: %w", err)
	}
	marker, err := s.signer.Issue(session.ActorID, session.IssuedAt)
	if err != nil {
		return fmt.Errorf("establish session: %w", err)
	}
	if err := s.Save(ctx, session); err != nil {
		return fmt.Errorf("establish session: %w", err)
	}
	s.manager.Put(ctx, authMarkerKey, marker)
	return nil
}

func (s *sessionService) Destroy(ctx context.Context) error {
	if err := s.manager.Destroy(ctx); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
