package deposit

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "spark/internal/errors"
	"spark/internal/models"
	"spark/internal/money"
	"spark/internal/repositories"
	"spark/internal/repositories/memory"
	"spark/internal/services/payment"
	"spark/internal/services/transfer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	alice uint = 1
	bob   uint = 2
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.Receipt, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*payment.Receipt)
	return r, args.Error(1)
}

// flakyRepo fails the next n ledger transactions before they commit.
type flakyRepo struct {
	*memory.Store
	failures int
}

func (f *flakyRepo) ExecuteInTransaction(ctx context.Context, fn func(repositories.LedgerTx) error) error {
	return f.Store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		if err := fn(tx); err != nil {
			return err
		}
		if f.failures > 0 {
			f.failures--
			return errors.New("connection reset")
		}
		return nil
	})
}

func newStore() *memory.Store {
	store := memory.NewStore(time.Second)
	store.AddUser(alice, bob)
	return store
}

func balanceOf(t *testing.T, store *memory.Store, userID uint) int64 {
	t.Helper()
	w, err := store.GetByUserID(context.Background(), userID)
	if errors.Is(err, repositories.ErrWalletNotFound) {
		return 0
	}
	require.NoError(t, err)
	return w.Balance
}

func TestDeposit_CreditsWallet(t *testing.T) {
	store := newStore()
	svc := NewService(store, store, payment.NewSandboxGateway(0), "USD")

	result, err := svc.Deposit(context.Background(), Request{
		UserID:        alice,
		Amount:        "12.5",
		Currency:      "usd",
		PaymentMethod: "pm_card_visa",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ProviderTransactionID)
	assert.Equal(t, "12.50000000", result.Balance.String())
	assert.False(t, result.Replayed)
	assert.Equal(t, int64(1250000000), balanceOf(t, store, alice))

	entries := store.Transactions()
	require.Len(t, entries, 1)
	assert.Equal(t, models.TransactionTypeDeposit, entries[0].Type)
	assert.Nil(t, entries[0].FromWalletID)
	require.NotNil(t, entries[0].ProviderTransactionID)
	assert.Equal(t, result.ProviderTransactionID, *entries[0].ProviderTransactionID)
}

func TestDeposit_DeclinedLeavesWalletUntouched(t *testing.T) {
	store := newStore()
	store.SeedWallet(alice, 100)
	svc := NewService(store, store, payment.NewSandboxGateway(0), "USD")

	_, err := svc.Deposit(context.Background(), Request{
		UserID:        alice,
		Amount:        "5",
		PaymentMethod: payment.DeclineMethod,
	})
	assert.ErrorIs(t, err, domainErrors.ErrPaymentDeclined)
	assert.Equal(t, domainErrors.KindUpstream, domainErrors.KindOf(err))
	assert.Contains(t, err.Error(), "card declined")

	assert.Equal(t, int64(100), balanceOf(t, store, alice))
	assert.Empty(t, store.Transactions())
}

func TestDeposit_ValidationSkipsGateway(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{name: "zero", req: Request{UserID: alice, Amount: "0"}, wantErr: domainErrors.ErrInvalidAmount},
		{name: "negative", req: Request{UserID: alice, Amount: "-4"}, wantErr: domainErrors.ErrInvalidAmount},
		{name: "malformed", req: Request{UserID: alice, Amount: "1,5"}, wantErr: domainErrors.ErrInvalidAmount},
		{name: "other currency", req: Request{UserID: alice, Amount: "1", Currency: "EUR"}, wantErr: domainErrors.ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := new(MockGateway)
			store := newStore()
			svc := NewService(store, store, gateway, "USD")

			_, err := svc.Deposit(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
		})
	}
}

func TestDeposit_ForwardsIdempotencyKey(t *testing.T) {
	gateway := new(MockGateway)
	gateway.On("Charge", mock.Anything, mock.MatchedBy(func(req payment.ChargeRequest) bool {
		return req.IdempotencyKey == "1:attempt-1" && req.Amount == money.One && req.Currency == "USD"
	})).Return(&payment.Receipt{ProviderTransactionID: "pi_abc"}, nil)

	store := newStore()
	svc := NewService(store, store, gateway, "")

	result, err := svc.Deposit(context.Background(), Request{UserID: alice, Amount: "1", PaymentMethod: "pm_card_visa", IdempotencyKey: "attempt-1"})
	require.NoError(t, err)
	assert.Equal(t, "pi_abc", result.ProviderTransactionID)
	gateway.AssertExpectations(t)
}

func TestDeposit_RetryAfterCommitFailureCreditsOnce(t *testing.T) {
	store := newStore()
	repo := &flakyRepo{Store: store, failures: 1}
	gateway := payment.NewSandboxGateway(0)
	svc := NewService(repo, store, gateway, "USD")
	req := Request{UserID: alice, Amount: "3", PaymentMethod: "pm_card_visa", IdempotencyKey: "retry-me"}

	_, err := svc.Deposit(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, int64(0), balanceOf(t, store, alice))

	first, err := svc.Deposit(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := svc.Deposit(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, first.ProviderTransactionID, second.ProviderTransactionID)

	assert.Equal(t, 1, gateway.Charges())
	assert.Equal(t, int64(300000000), balanceOf(t, store, alice))
	assert.Len(t, store.Transactions(), 1)
}

func TestDeposit_SharedKeyAcrossUsersCreditsEach(t *testing.T) {
	store := newStore()
	svc := NewService(store, store, payment.NewSandboxGateway(0), "USD")
	ctx := context.Background()

	first, err := svc.Deposit(ctx, Request{UserID: alice, Amount: "5", PaymentMethod: "pm_card_visa", IdempotencyKey: "k1"})
	require.NoError(t, err)

	second, err := svc.Deposit(ctx, Request{UserID: bob, Amount: "100", PaymentMethod: "pm_card_visa", IdempotencyKey: "k1"})
	require.NoError(t, err)
	assert.False(t, second.Replayed)
	assert.NotEqual(t, first.TransactionID, second.TransactionID)
	assert.NotEqual(t, first.ProviderTransactionID, second.ProviderTransactionID)

	assert.Equal(t, int64(500000000), balanceOf(t, store, alice))
	assert.Equal(t, int64(10000000000), balanceOf(t, store, bob))
}

func TestDeposit_RecordedChargeMismatchIsRejected(t *testing.T) {
	tests := []struct {
		name   string
		userID uint
		amount string
	}{
		{name: "other user", userID: bob, amount: "5"},
		{name: "other amount", userID: alice, amount: "6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := new(MockGateway)
			gateway.On("Charge", mock.Anything, mock.Anything).Return(&payment.Receipt{ProviderTransactionID: "pi_same"}, nil)
			store := newStore()
			svc := NewService(store, store, gateway, "USD")
			ctx := context.Background()

			_, err := svc.Deposit(ctx, Request{UserID: alice, Amount: "5", PaymentMethod: "pm_card_visa", IdempotencyKey: "k1"})
			require.NoError(t, err)

			_, err = svc.Deposit(ctx, Request{UserID: tt.userID, Amount: tt.amount, PaymentMethod: "pm_card_visa", IdempotencyKey: "k1"})
			assert.ErrorIs(t, err, domainErrors.ErrIdempotencyKeyReused)
			assert.Equal(t, domainErrors.KindValidation, domainErrors.KindOf(err))

			assert.Equal(t, int64(500000000), balanceOf(t, store, alice))
			assert.Equal(t, int64(0), balanceOf(t, store, bob))
			assert.Len(t, store.Transactions(), 1)
		})
	}
}

func TestDeposit_ReplayReportsRecordedAmount(t *testing.T) {
	store := newStore()
	svc := NewService(store, store, payment.NewSandboxGateway(0), "USD")
	ctx := context.Background()
	req := Request{UserID: alice, Amount: "2.5", PaymentMethod: "pm_card_visa", IdempotencyKey: "again"}

	_, err := svc.Deposit(ctx, req)
	require.NoError(t, err)

	req.Amount = "2.50000000"
	replay, err := svc.Deposit(ctx, req)
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, "2.50000000", replay.Amount.String())
	assert.Equal(t, int64(250000000), balanceOf(t, store, alice))
}

func TestAdminDeposit(t *testing.T) {
	store := newStore()
	svc := NewService(store, store, new(MockGateway), "USD")

	result, err := svc.AdminDeposit(context.Background(), bob, "7.25")
	require.NoError(t, err)
	assert.Empty(t, result.ProviderTransactionID)
	assert.Equal(t, int64(725000000), balanceOf(t, store, bob))

	entries := store.Transactions()
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].ProviderTransactionID)

	_, err = svc.AdminDeposit(context.Background(), 77, "1")
	assert.ErrorIs(t, err, domainErrors.ErrUserNotFound)

	_, err = svc.AdminDeposit(context.Background(), bob, "0")
	assert.ErrorIs(t, err, domainErrors.ErrInvalidAmount)
}

func TestDeposit_DecimalPrecisionRoundTrip(t *testing.T) {
	store := newStore()
	deposits := NewService(store, store, payment.NewSandboxGateway(0), "USD")
	transfers := transfer.NewService(store, store)
	ctx := context.Background()

	_, err := deposits.Deposit(ctx, Request{UserID: alice, Amount: "10.00000001", PaymentMethod: "pm_card_visa"})
	require.NoError(t, err)

	_, err = transfers.Transfer(ctx, transfer.Request{FromUserID: alice, ToUserID: bob, Amount: "10.00000001", Kind: models.TransactionTypeTransfer})
	require.NoError(t, err)

	assert.Equal(t, int64(0), balanceOf(t, store, alice))
	assert.Equal(t, int64(1000000001), balanceOf(t, store, bob))
}
