package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juho05/log"

	"github.com/restoka/closing/gate"
	"github.com/restoka/closing/recordapi"
)

type AuthService interface {
	// Login verifies the credentials against the record service and
	// establishes a fresh session with an auth token marker.
	Login(ctx context.Context, userID, pin string) (*gate.Session, error)
	Logout(ctx context.Context) error

	// SelectStore switches a manager's or admin's active store context.
	SelectStore(ctx context.Context, session *gate.Session, storeID string) (*gate.Session, error)
}

type authService struct {
	client   recordapi.Client
	sessions SessionService
	now      func() time.Time
}

func NewAuthService(client recordapi.Client, sessions SessionService) AuthService {
	return &authService{
		client:   client,
		sessions: sessions,
		now:      time.Now,
	}
}

func (a *authService) Login(ctx context.Context, userID, pin string) (*gate.Session, error) {
	result, err := a.client.Login(ctx, userID, pin)
	if err != nil {
		if errors.Is(err, recordapi.ErrUnauthorized) || errors.Is(err, recordapi.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	role := gate.Role(result.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("login: record service returned unknown role %q", result.Role)
	}
	now := a.now()
	session := &gate.Session{
		ActorID:     result.ActorID,
		Name:        result.Name,
		Role:        role,
		StoreAccess: result.StoreAccess,
		IssuedAt:    now,
		LastSeenAt:  now,
	}
	if role == gate.RoleCashier {
		session.StoreID = result.StoreID
	}
	if err := a.sessions.Establish(ctx, session); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	log.Infof("%s (%s) logged in", session.Name, session.Role)
	return session, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.sessions.Destroy(ctx)
}

func (a *authService) SelectStore(ctx context.Context, session *gate.Session, storeID string) (*gate.Session, error) {
	if session.Role == gate.RoleCashier {
		return nil, ErrStoreNotAllowed
	}
	if !session.CanAccessStore(storeID) {
		return nil, ErrStoreNotAllowed
	}
	session.ActiveStoreID = storeID
	if err := a.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("select store: %w", err)
	}
	return session, nil
}
