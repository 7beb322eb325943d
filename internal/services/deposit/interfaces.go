package deposit

import (
	"context"

	"spark/internal/money"
)

// UserDirectory answers whether a user id exists.
type UserDirectory interface {
	Exists(ctx context.Context, userID uint) (bool, error)
}

// Request is a user-initiated deposit through the payment gateway.
// IdempotencyKey identifies the client's attempt; a retry with the same key
// credits the wallet at most once.
type Request struct {
	UserID         uint
	Amount         string
	Currency       string
	PaymentMethod  string
	IdempotencyKey string
}

type Result struct {
	ProviderTransactionID string
	TransactionID         uint
	Amount                money.Amount
	Balance               money.Amount
	// Replayed is set when the provider transaction had already been credited.
	Replayed bool
}

// Service credits wallets from outside the ledger.
type Service interface {
	Deposit(ctx context.Context, req Request) (*Result, error)
	// AdminDeposit credits a wallet without charging a payment method.
	AdminDeposit(ctx context.Context, targetUserID uint, amount string) (*Result, error)
}
