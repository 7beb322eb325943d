package wallet

import (
	"context"
)

// Service defines the wallet operations offered to transports. Callers pass
// an already authenticated user id.
type Service interface {
	// Balance operations
	GetBalance(ctx context.Context, userID uint) (string, error)
	GetTransactionHistory(ctx context.Context, userID uint, limit, offset int) ([]HistoryEntry, error)

	// Value moves between users
	Transfer(ctx context.Context, actorUserID, toUserID uint, amount string) (*TransferResult, error)
	SuperLike(ctx context.Context, actorUserID, toUserID uint, amount string) (*TransferResult, error)
	AdminTransfer(ctx context.Context, fromUserID, toUserID uint, amount string) (*TransferResult, error)
	SendGift(ctx context.Context, req GiftRequest) (*GiftResult, error)

	// Credits from outside the ledger
	Deposit(ctx context.Context, req DepositRequest) (*DepositResult, error)
	AdminDeposit(ctx context.Context, targetUserID uint, amount string) (*DepositResult, error)
}

// UserDirectory answers whether a user id exists.
type UserDirectory interface {
	Exists(ctx context.Context, userID uint) (bool, error)
}

// BalanceCache holds formatted balances keyed by user id. Entries are
// dropped after every commit that touches the wallet.
type BalanceCache interface {
	GetBalance(ctx context.Context, userID uint) (string, bool, error)
	SetBalance(ctx context.Context, userID uint, balance string) error
	InvalidateBalances(ctx context.Context, userIDs ...uint) error
}
