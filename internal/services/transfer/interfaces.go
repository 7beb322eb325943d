package transfer

import (
	"context"

	"spark/internal/models"
	"spark/internal/money"
	"spark/internal/repositories"
)

// UserDirectory answers whether a user id exists.
type UserDirectory interface {
	Exists(ctx context.Context, userID uint) (bool, error)
}

// Request moves Amount from FromUserID to ToUserID. Kind is Transfer for
// user, admin and gift moves, or SuperLike.
type Request struct {
	FromUserID uint
	ToUserID   uint
	Amount     string
	Kind       models.TransactionType
}

// Result describes a committed (or, inside ExecuteInTx, staged) move.
type Result struct {
	Transaction *models.Transaction
	Amount      money.Amount
	FromBalance money.Amount
	ToBalance   money.Amount
}

// Service executes two-party value moves.
type Service interface {
	// Transfer validates req, then debits and credits both wallets and writes
	// one ledger entry in a single database transaction.
	Transfer(ctx context.Context, req Request) (*Result, error)

	// ExecuteInTx performs the move inside a transaction owned by the caller.
	// The caller is responsible for having checked that both users exist.
	ExecuteInTx(ctx context.Context, tx repositories.LedgerTx, req Request) (*Result, error)
}
