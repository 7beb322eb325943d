package repositories

import (
	"context"
	"errors"

	"spark/internal/models"
)

var (
	ErrWalletNotFound               = errors.New("wallet not found")
	ErrWalletNotLocked              = errors.New("wallet is not locked by this transaction")
	ErrDuplicateProviderTransaction = errors.New("provider transaction already recorded")
)

// WalletRepository is the ledger store: wallets, ledger entries and gifts.
type WalletRepository interface {
	// ExecuteInTransaction runs fn inside one database transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Lock waits inside fn are bounded by the configured lock timeout.
	ExecuteInTransaction(ctx context.Context, fn func(tx LedgerTx) error) error

	// Read side, no locks taken.
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	GetTransactionHistory(ctx context.Context, walletID uint, limit, offset int) ([]models.Transaction, error)
}

// LedgerTx is the set of operations valid inside an open ledger transaction.
type LedgerTx interface {
	// GetOrCreateWallet returns the user's wallet, inserting an empty one if
	// none exists. Safe under concurrent creation for the same user.
	GetOrCreateWallet(ctx context.Context, userID uint) (*models.Wallet, error)

	// LockWallet takes a pessimistic write lock on the wallet row and returns
	// its current state. Use LockWalletsInOrder when more than one wallet is involved.
	LockWallet(ctx context.Context, walletID uint) (*models.Wallet, error)

	// SaveBalance persists wallet.Balance. The wallet must be locked.
	SaveBalance(ctx context.Context, wallet *models.Wallet) error

	CreateTransaction(ctx context.Context, entry *models.Transaction) error
	CreateGift(ctx context.Context, gift *models.Gift) error

	// FindDepositByProviderID returns the deposit entry recorded for a
	// gateway transaction id, or nil if there is none.
	FindDepositByProviderID(ctx context.Context, providerTransactionID string) (*models.Transaction, error)
}
