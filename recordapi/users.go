package recordapi

import (
	"context"
	"fmt"
	"net/http"
)

type Store struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	StoreID     string   `json:"storeId,omitempty"`
	StoreAccess []string `json:"storeAccess,omitempty"`
	Active      bool     `json:"active"`
}

type NewUser struct {
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	PINHash     string   `json:"pinHash"`
	StoreID     string   `json:"storeId,omitempty"`
	StoreAccess []string `json:"storeAccess,omitempty"`
}

// UserChanges carries only the fields that should change. Nil pointers are
// omitted from the request entirely.
type UserChanges struct {
	Name        *string   `json:"name,omitempty"`
	Role        *string   `json:"role,omitempty"`
	PINHash     *string   `json:"pinHash,omitempty"`
	StoreID     *string   `json:"storeId,omitempty"`
	StoreAccess *[]string `json:"storeAccess,omitempty"`
	Active      *bool     `json:"active,omitempty"`
}

func (c *client) ListStores(ctx context.Context) ([]Store, error) {
	var stores []Store
	err := c.do(ctx, http.MethodGet, "/stores", nil, &stores)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return stores, nil
}

func (c *client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := c.do(ctx, http.MethodGet, "/users", nil, &users)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (c *client) CreateUser(ctx context.Context, user NewUser) (*User, error) {
	var created User
	err := c.do(ctx, http.MethodPost, "/users", user, &created)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &created, nil
}

func (c *client) UpdateUser(ctx context.Context, id string, changes UserChanges) (*User, error) {
	var updated User
	err := c.do(ctx, http.MethodPatch, "/users/"+id, changes, &updated)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	return &updated, nil
}
