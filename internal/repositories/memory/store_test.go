package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "spark/internal/errors"
	"spark/internal/models"
	"spark/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestStore_CommitAppliesStagedWrites(t *testing.T) {
	store := NewStore(time.Second)
	ctx := context.Background()

	err := store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		w, err := tx.GetOrCreateWallet(ctx, 1)
		require.NoError(t, err)
		locked, err := tx.LockWallet(ctx, w.ID)
		require.NoError(t, err)
		locked.Balance = 500
		require.NoError(t, tx.SaveBalance(ctx, locked))
		return tx.CreateTransaction(ctx, &models.Transaction{ToWalletID: &locked.ID, Amount: "0.00000500", Type: models.TransactionTypeDeposit})
	})
	require.NoError(t, err)

	w, err := store.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(500), w.Balance)
	assert.Len(t, store.Transactions(), 1)
	assert.Equal(t, "0", store.Transactions()[0].FeeAmount)
}

func TestStore_RollbackDiscardsStagedWrites(t *testing.T) {
	store := NewStore(time.Second)
	store.SeedWallet(1, 100)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		w, _ := tx.GetOrCreateWallet(ctx, 1)
		locked, _ := tx.LockWallet(ctx, w.ID)
		locked.Balance = 0
		_ = tx.SaveBalance(ctx, locked)
		_ = tx.CreateTransaction(ctx, &models.Transaction{FromWalletID: &locked.ID, Amount: "0.00000100", Type: models.TransactionTypeTransfer})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	w, err := store.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), w.Balance)
	assert.Empty(t, store.Transactions())
}

func TestStore_SaveBalanceRequiresLock(t *testing.T) {
	store := NewStore(time.Second)
	ctx := context.Background()

	err := store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		w, _ := tx.GetOrCreateWallet(ctx, 1)
		w.Balance = 10
		return tx.SaveBalance(ctx, w)
	})
	assert.ErrorIs(t, err, repositories.ErrWalletNotLocked)
}

func TestStore_LockIsExclusiveUntilCommit(t *testing.T) {
	store := NewStore(50 * time.Millisecond)
	wallet := store.SeedWallet(1, 0)
	ctx := context.Background()

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
			if _, err := tx.LockWallet(ctx, wallet.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	err := store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		_, err := tx.LockWallet(ctx, wallet.ID)
		return err
	})
	assert.ErrorIs(t, err, domainErrors.ErrLockTimeout)

	close(release)
	require.NoError(t, <-done)

	err = store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		_, err := tx.LockWallet(ctx, wallet.ID)
		return err
	})
	assert.NoError(t, err)
}

func TestStore_LockIsReentrantWithinTransaction(t *testing.T) {
	store := NewStore(20 * time.Millisecond)
	wallet := store.SeedWallet(1, 5)
	ctx := context.Background()

	err := store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		first, err := tx.LockWallet(ctx, wallet.ID)
		require.NoError(t, err)
		first.Balance = 9
		require.NoError(t, tx.SaveBalance(ctx, first))

		second, err := tx.LockWallet(ctx, wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(9), second.Balance)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_RejectsNegativeBalanceAtCommit(t *testing.T) {
	store := NewStore(time.Second)
	wallet := store.SeedWallet(1, 5)
	ctx := context.Background()

	err := store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		w, _ := tx.LockWallet(ctx, wallet.ID)
		w.Balance = -1
		return tx.SaveBalance(ctx, w)
	})
	require.Error(t, err)

	w, _ := store.GetByUserID(ctx, 1)
	assert.Equal(t, int64(5), w.Balance)
}

func TestStore_ProviderIDIsUnique(t *testing.T) {
	store := NewStore(time.Second)
	ctx := context.Background()
	wallet := store.SeedWallet(1, 0)

	insert := func() error {
		return store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
			return tx.CreateTransaction(ctx, &models.Transaction{
				ToWalletID:            &wallet.ID,
				Amount:                "1.00000000",
				Type:                  models.TransactionTypeDeposit,
				ProviderTransactionID: ptr("pi_123"),
			})
		})
	}

	require.NoError(t, insert())
	assert.ErrorIs(t, insert(), repositories.ErrDuplicateProviderTransaction)

	err := store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		found, err := tx.FindDepositByProviderID(ctx, "pi_123")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "1.00000000", found.Amount)

		missing, err := tx.FindDepositByProviderID(ctx, "pi_999")
		require.NoError(t, err)
		assert.Nil(t, missing)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_TransactionHistoryNewestFirst(t *testing.T) {
	store := NewStore(time.Second)
	ctx := context.Background()
	a := store.SeedWallet(1, 0)
	b := store.SeedWallet(2, 0)

	for _, amount := range []string{"1", "2", "3"} {
		amount := amount
		require.NoError(t, store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
			return tx.CreateTransaction(ctx, &models.Transaction{FromWalletID: &a.ID, ToWalletID: &b.ID, Amount: amount, Type: models.TransactionTypeTransfer})
		}))
	}

	history, err := store.GetTransactionHistory(ctx, b.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "3", history[0].Amount)
	assert.Equal(t, "2", history[1].Amount)

	page, err := store.GetTransactionHistory(ctx, a.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "1", page[0].Amount)
}

func TestStore_GiftRequiresTransaction(t *testing.T) {
	store := NewStore(time.Second)
	ctx := context.Background()

	err := store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		return tx.CreateGift(ctx, &models.Gift{SenderID: 1, ReceiverID: 2, GiftKind: "rose", Amount: "1", TransactionID: 42})
	})
	assert.Error(t, err)
	assert.Empty(t, store.Gifts())
}

func TestStore_UserDirectory(t *testing.T) {
	store := NewStore(time.Second)
	ctx := context.Background()
	store.AddUser(3)

	ok, err := store.Exists(ctx, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = store.Exists(ctx, 4)
	assert.False(t, ok)

	u := &models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(t, store.Create(ctx, u))
	assert.Equal(t, uint(4), u.ID)
	assert.ErrorIs(t, store.Create(ctx, &models.User{Email: "admin@example.com"}), repositories.ErrEmailTaken)

	found, err := store.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, found.Role)
}
