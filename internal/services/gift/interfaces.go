package gift

import (
	"context"

	"spark/internal/money"
)

// UserDirectory answers whether a user id exists.
type UserDirectory interface {
	Exists(ctx context.Context, userID uint) (bool, error)
}

// Request sends Amount from SenderID to ReceiverID as a gift of GiftKind.
type Request struct {
	SenderID   uint
	ReceiverID uint
	GiftKind   string
	Amount     string
	Message    *string
}

type Result struct {
	GiftID          uint
	TransactionID   uint
	Amount          money.Amount
	SenderBalance   money.Amount
	ReceiverBalance money.Amount
}

// Service sends gifts between users.
type Service interface {
	SendGift(ctx context.Context, req Request) (*Result, error)
}
