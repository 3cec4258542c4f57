package services

import (
	"context"
	"time"

	"github.com/juho05/log"
	"github.com/oklog/ulid/v2"

	"github.com/restoka/closing/recordapi"
)

// LockEvent is emitted whenever a watched record's lock status is observed
// to differ from the last-seen value.
type LockEvent struct {
	SubscriptionID string               `json:"subscriptionId"`
	StoreID        string               `json:"storeId"`
	BusinessDate   string               `json:"businessDate"`
	Status         recordapi.LockStatus `json:"status"`
	ObservedAt     time.Time            `json:"observedAt"`
}

// LockWatcher polls the record service for lock status changes on a fixed
// interval. Redundant observations are suppressed: subscribers only hear
// about transitions.
type LockWatcher struct {
	client   recordapi.Client
	interval time.Duration
}

func NewLockWatcher(client recordapi.Client, interval time.Duration) *LockWatcher {
	return &LockWatcher{
		client:   client,
		interval: interval,
	}
}

// Watch polls until ctx is canceled. last is the status the subscriber
// already knows; pass the empty string to treat the first observation as a
// change. The returned channel is closed when the watch ends.
func (w *LockWatcher) Watch(ctx context.Context, storeID, businessDate string, last recordapi.LockStatus) <-chan LockEvent {
	events := make(chan LockEvent, 1)
	subscriptionID := ulid.Make().String()

	go func() {
		defer close(events)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			record, err := w.client.FetchClosing(ctx, storeID, businessDate)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// transient failures keep the last-seen value untouched
				log.Tracef("lock watch %s: %s", subscriptionID, err)
				continue
			}
			status := record.Fields.LockStatus
			if status == last {
				continue
			}
			last = status
			event := LockEvent{
				SubscriptionID: subscriptionID,
				StoreID:        storeID,
				BusinessDate:   businessDate,
				Status:         status,
				ObservedAt:     time.Now(),
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events
}
