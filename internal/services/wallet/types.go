package wallet

import (
	"time"

	"spark/internal/models"
	"spark/internal/money"
)

type DepositRequest struct {
	UserID         uint   `json:"-"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	PaymentMethod  string `json:"payment_method"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type GiftRequest struct {
	SenderID   uint    `json:"-"`
	ReceiverID uint    `json:"receiver_id"`
	GiftKind   string  `json:"gift_kind"`
	Amount     string  `json:"amount"`
	Message    *string `json:"message,omitempty"`
}

// TransferResult is returned by every user-to-user move.
type TransferResult struct {
	TransactionID uint   `json:"transaction_id"`
	Amount        string `json:"amount"`
	FromBalance   string `json:"from_balance"`
	ToBalance     string `json:"to_balance"`
}

type DepositResult struct {
	ProviderTransactionID string `json:"provider_transaction_id,omitempty"`
	TransactionID         uint   `json:"transaction_id"`
	Amount                string `json:"amount"`
	Balance               string `json:"balance"`
	Replayed              bool   `json:"replayed,omitempty"`
}

type GiftResult struct {
	GiftID        uint   `json:"gift_id"`
	TransactionID uint   `json:"transaction_id"`
	Amount        string `json:"amount"`
	SenderBalance string `json:"sender_balance"`
}

// Directions of a history entry relative to the wallet owner.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// HistoryEntry is a ledger entry seen from one wallet.
type HistoryEntry struct {
	ID                   uint                   `json:"id"`
	Type                 models.TransactionType `json:"type"`
	Direction            string                 `json:"direction"`
	Amount               string                 `json:"amount"`
	FeeAmount            string                 `json:"fee_amount"`
	CounterpartyWalletID *uint                  `json:"counterparty_wallet_id,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	// Cache metrics
	RecordCacheHit(operation string)
	RecordCacheMiss(operation string)

	// Error metrics
	RecordError(operation, errKind string)

	// Transaction metrics
	RecordTransaction(txType models.TransactionType, amount money.Amount)
}
