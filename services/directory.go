package services

import (
	"context"
	"fmt"

	"github.com/restoka/closing/gate"
	"github.com/restoka/closing/recordapi"
)

// DirectoryService exposes the record service's user and store registries
// to the admin views.
type DirectoryService interface {
	// Stores lists the stores the actor may select as their active
	// context. Admins see every store.
	Stores(ctx context.Context, actor *gate.Session) ([]recordapi.Store, error)
	Users(ctx context.Context) ([]recordapi.User, error)
	CreateUser(ctx context.Context, user recordapi.NewUser) (*recordapi.User, error)
	UpdateUser(ctx context.Context, id string, changes recordapi.UserChanges) (*recordapi.User, error)
}

type directoryService struct {
	client recordapi.Client
}

func NewDirectoryService(client recordapi.Client) DirectoryService {
	return &directoryService{
		client: client,
	}
}

func (d *directoryService) Stores(ctx context.Context, actor *gate.Session) ([]recordapi.Store, error) {
	stores, err := d.client.ListStores(ctx)
	if err != nil {
		return nil, err
	}
	if actor.Role == gate.RoleAdmin {
		return stores, nil
	}
	accessible := make([]recordapi.Store, 0, len(stores))
	for _, store := range stores {
		if actor.CanAccessStore(store.ID) {
			accessible = append(accessible, store)
		}
	}
	return accessible, nil
}

func (d *directoryService) Users(ctx context.Context) ([]recordapi.User, error) {
	return d.client.ListUsers(ctx)
}

func (d *directoryService) CreateUser(ctx context.Context, user recordapi.NewUser) (*recordapi.User, error) {
	if !gate.Role(user.Role).Valid() {
		return nil, fmt.Errorf("create user: unknown role %q", user.Role)
	}
	return d.client.CreateUser(ctx, user)
}

func (d *directoryService) UpdateUser(ctx context.Context, id string, changes recordapi.UserChanges) (*recordapi.User, error) {
	if changes.Role != nil && !gate.Role(*changes.Role).Valid() {
		return nil, fmt.Errorf("update user: unknown role %q", *changes.Role)
	}
	return d.client.UpdateUser(ctx, id, changes)
}
