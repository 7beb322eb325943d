package payment

import (
	"context"
	"errors"

	"spark/internal/money"
)

var (
	ErrDeclined             = errors.New("payment declined")
	ErrUnsupportedPrecision = errors.New("amount has more precision than the currency allows")
)

// ChargeRequest is a single synchronous charge against the user's payment method.
type ChargeRequest struct {
	UserID         uint
	Amount         money.Amount
	Currency       string
	PaymentMethod  string
	IdempotencyKey string
}

// Receipt identifies a successful charge at the provider.
type Receipt struct {
	ProviderTransactionID string
}

// Gateway charges an external payment method. Replaying a request with the
// same idempotency key must return the original receipt.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Receipt, error)
}
