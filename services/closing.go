package services

import (
	"context"
	"errors"
	"sync"

	"github.com/restoka/closing/gate"
	"github.com/restoka/closing/recordapi"
)

// ClosingView is what the front-end renders: the raw record plus the
// derived figures.
type ClosingView struct {
	Record  *recordapi.Record `json:"record"`
	Derived Derived           `json:"derived"`
}

type ClosingService interface {
	// Fetch loads the unique record for (store, businessDate). A newer
	// fetch for the same pair supersedes an in-flight one; the superseded
	// call returns ErrSuperseded and its result must be discarded.
	Fetch(ctx context.Context, actor *gate.Session, storeID, businessDate string) (*ClosingView, error)
	// Save submits a draft. The record service locks the record as part
	// of the same write.
	Save(ctx context.Context, actor *gate.Session, draft recordapi.ClosingDraft) (*ClosingView, error)
	Unlock(ctx context.Context, recordID, managerPIN string) (*ClosingView, error)
	Patch(ctx context.Context, recordID string, fields map[string]any) (*ClosingView, error)
	Verify(ctx context.Context, actor *gate.Session, recordID string, status recordapi.VerifiedStatus, notes string) (*ClosingView, error)
}

type inflightFetch struct {
	cancel context.CancelFunc
}

type closingService struct {
	client recordapi.Client

	mu       sync.Mutex
	inFlight map[string]*inflightFetch
}

func NewClosingService(client recordapi.Client) ClosingService {
	return &closingService{
		client:   client,
		inFlight: make(map[string]*inflightFetch),
	}
}

func view(record *recordapi.Record) *ClosingView {
	return &ClosingView{
		Record:  record,
		Derived: DeriveFigures(record.Fields),
	}
}

func fetchKey(storeID, businessDate string) string {
	return storeID + "\x00" + businessDate
}

func (c *closingService) Fetch(ctx context.Context, actor *gate.Session, storeID, businessDate string) (*ClosingView, error) {
	if storeID == "" {
		return nil, ErrNoActiveStore
	}
	if !actor.CanAccessStore(storeID) && actor.OperatingStore() != storeID {
		return nil, ErrStoreNotAllowed
	}

	key := fetchKey(storeID, businessDate)
	fetchCtx, cancel := context.WithCancel(ctx)
	entry := &inflightFetch{cancel: cancel}

	c.mu.Lock()
	if prev, ok := c.inFlight[key]; ok {
		prev.cancel()
	}
	c.inFlight[key] = entry
	c.mu.Unlock()

	record, err := c.client.FetchClosing(fetchCtx, storeID, businessDate)

	c.mu.Lock()
	superseded := c.inFlight[key] != entry
	if !superseded {
		delete(c.inFlight, key)
	}
	c.mu.Unlock()
	cancel()

	// A superseded result is discarded even when the call finished before
	// the cancellation reached it.
	if superseded && ctx.Err() == nil {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	return view(record), nil
}

func (c *closingService) Save(ctx context.Context, actor *gate.Session, draft recordapi.ClosingDraft) (*ClosingView, error) {
	store := actor.OperatingStore()
	if store == "" {
		return nil, ErrNoActiveStore
	}
	if draft.StoreID != store {
		return nil, ErrStoreNotAllowed
	}
	if draft.SubmittedBy == "" {
		draft.SubmittedBy = actor.Name
	}
	record, err := c.client.SaveClosing(ctx, draft)
	if err != nil {
		if errors.Is(err, recordapi.ErrLocked) {
			// a concurrent lock is a reportable failure, not a race to retry
			return nil, ErrRecordLocked
		}
		return nil, err
	}
	return view(record), nil
}

func (c *closingService) Unlock(ctx context.Context, recordID, managerPIN string) (*ClosingView, error) {
	record, err := c.client.UnlockClosing(ctx, recordID, managerPIN)
	if err != nil {
		if errors.Is(err, recordapi.ErrUnauthorized) {
			return nil, ErrInvalidPIN
		}
		return nil, err
	}
	return view(record), nil
}

func (c *closingService) Patch(ctx context.Context, recordID string, fields map[string]any) (*ClosingView, error) {
	record, err := c.client.PatchClosing(ctx, recordID, fields)
	if err != nil {
		if errors.Is(err, recordapi.ErrLocked) {
			return nil, ErrRecordLocked
		}
		return nil, err
	}
	return view(record), nil
}

func (c *closingService) Verify(ctx context.Context, actor *gate.Session, recordID string, status recordapi.VerifiedStatus, notes string) (*ClosingView, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	record, err := c.client.VerifyClosing(ctx, recordID, status, actor.Name, notes)
	if err != nil {
		return nil, err
	}
	return view(record), nil
}
