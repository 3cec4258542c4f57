// Package recordapi talks to the external closing record service. The
// service owns every closing record, its lock status and its verification
// status; this package only moves them over HTTP and maps failures onto a
// small error taxonomy.
package recordapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client interface {
	Login(ctx context.Context, userID, pin string) (*LoginResult, error)

	FetchClosing(ctx context.Context, storeID, businessDate string) (*Record, error)
	SaveClosing(ctx context.Context, draft ClosingDraft) (*Record, error)
	UnlockClosing(ctx context.Context, recordID, managerPIN string) (*Record, error)
	PatchClosing(ctx context.Context, recordID string, fields map[string]any) (*Record, error)
	VerifyClosing(ctx context.Context, recordID string, status VerifiedStatus, verifier, notes string) (*Record, error)

	ListStores(ctx context.Context) ([]Store, error)
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, user NewUser) (*User, error)
	UpdateUser(ctx context.Context, id string, changes UserChanges) (*User, error)
}

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) Client {
	return &client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type LoginResult struct {
	ActorID     string   `json:"actorId"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	StoreID     string   `json:"storeId"`
	StoreAccess []string `json:"storeAccess"`
}

// Login exchanges a user identifier and PIN for the actor's identity. The
// PIN is verified by the record service, never locally.
func (c *client) Login(ctx context.Context, userID, pin string) (*LoginResult, error) {
	body := struct {
		UserID string `json:"userId"`
		PIN    string `json:"pin"`
	}{userID, pin}
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/login", body, &result)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &result, nil
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	res, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if err := statusError(res); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(res *http.Response) error {
	switch {
	case res.StatusCode < 300:
		return nil
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case res.StatusCode == http.StatusConflict || res.StatusCode == http.StatusLocked:
		return ErrLocked
	default:
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, res.StatusCode, bytes.TrimSpace(msg))
	}
}
