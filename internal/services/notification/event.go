package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType is the routing name of a wallet event.
type EventType string

const (
	EventBalanceChanged EventType = "balance.changed"
	EventGiftReceived   EventType = "gift.received"
)

// Event is emitted after a ledger transaction commits. It is informational
// only; consumers must not treat it as the source of truth for balances.
type Event struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	UserID         uint      `json:"user_id"`
	CounterpartyID uint      `json:"counterparty_id,omitempty"`
	TransactionID  uint      `json:"transaction_id,omitempty"`
	Amount         string    `json:"amount,omitempty"`
	Balance        string    `json:"balance,omitempty"`
	GiftID         uint      `json:"gift_id,omitempty"`
	GiftKind       string    `json:"gift_kind,omitempty"`
	Message        string    `json:"message,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, userID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers a single event to a side channel.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Notifier accepts events for best-effort delivery without blocking the caller.
type Notifier interface {
	Notify(events ...Event)
}
