package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	domainErrors "spark/internal/errors"
	"spark/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewWalletRepository returns a gorm-backed ledger store. lockTimeout bounds
// every row-lock wait; zero leaves the server default in place.
func NewWalletRepository(db *gorm.DB, lockTimeout time.Duration) WalletRepository {
	return &walletRepository{
		db:          db,
		lockTimeout: lockTimeout,
	}
}

func (r *walletRepository) ExecuteInTransaction(ctx context.Context, fn func(LedgerTx) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.applyLockTimeout(tx); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
		return fn(&ledgerTx{db: tx})
	})
	return domainErrors.Classify(err)
}

func (r *walletRepository) applyLockTimeout(tx *gorm.DB) error {
	if r.lockTimeout <= 0 {
		return nil
	}
	switch tx.Dialector.Name() {
	case "postgres":
		return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())).Error
	case "mysql":
		// innodb_lock_wait_timeout has one second granularity.
		secs := int(math.Ceil(r.lockTimeout.Seconds()))
		return tx.Exec(fmt.Sprintf("SET SESSION innodb_lock_wait_timeout = %d", secs)).Error
	}
	return nil
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetTransactionHistory(ctx context.Context, walletID uint, limit, offset int) ([]models.Transaction, error) {
	var entries []models.Transaction
	err := r.db.WithContext(ctx).
		Where("from_wallet_id = ? OR to_wallet_id = ?", walletID, walletID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return entries, nil
}

type ledgerTx struct {
	db *gorm.DB
}

func (t *ledgerTx) GetOrCreateWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := t.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainErrors.Classify(fmt.Errorf("failed to get wallet: %w", err))
	}

	// A concurrent creator may win the race; the unique user_id index makes
	// the loser a no-op. The re-read is a locking read: under REPEATABLE READ
	// a plain read would reuse the snapshot taken before the winner committed.
	created := models.Wallet{UserID: userID}
	err = t.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&created).Error
	if err != nil {
		return nil, domainErrors.Classify(fmt.Errorf("failed to create wallet: %w", err))
	}

	err = t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if err != nil {
		return nil, domainErrors.Classify(fmt.Errorf("failed to get wallet: %w", err))
	}
	return &wallet, nil
}

func (t *ledgerTx) LockWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&wallet, walletID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, domainErrors.Classify(fmt.Errorf("failed to lock wallet: %w", err))
	}
	return &wallet, nil
}

func (t *ledgerTx) SaveBalance(ctx context.Context, wallet *models.Wallet) error {
	result := t.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		Update("balance", wallet.Balance)
	if result.Error != nil {
		return domainErrors.Classify(fmt.Errorf("failed to update wallet balance: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (t *ledgerTx) CreateTransaction(ctx context.Context, entry *models.Transaction) error {
	if err := t.db.WithContext(ctx).Create(entry).Error; err != nil {
		if entry.ProviderTransactionID != nil && domainErrors.IsUniqueViolation(err) {
			return ErrDuplicateProviderTransaction
		}
		return domainErrors.Classify(fmt.Errorf("failed to create transaction: %w", err))
	}
	return nil
}

func (t *ledgerTx) CreateGift(ctx context.Context, gift *models.Gift) error {
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(gift).Error; err != nil {
		return domainErrors.Classify(fmt.Errorf("failed to create gift: %w", err))
	}
	return nil
}

func (t *ledgerTx) FindDepositByProviderID(ctx context.Context, providerTransactionID string) (*models.Transaction, error) {
	var entry models.Transaction
	err := t.db.WithContext(ctx).
		Where("provider_transaction_id = ? AND type = ?", providerTransactionID, models.TransactionTypeDeposit).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find deposit: %w", err)
	}
	return &entry, nil
}
