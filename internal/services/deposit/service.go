package deposit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "spark/internal/errors"
	"spark/internal/models"
	"spark/internal/money"
	"spark/internal/repositories"
	"spark/internal/services/payment"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultCurrency is the only currency the ledger holds.
const DefaultCurrency = "USD"

type service struct {
	repo     repositories.WalletRepository
	users    UserDirectory
	gateway  payment.Gateway
	currency string
}

// NewService creates the deposit processor. currency defaults to USD.
func NewService(repo repositories.WalletRepository, users UserDirectory, gateway payment.Gateway, currency string) Service {
	if repo == nil {
		panic("repo is required")
	}
	if users == nil {
		panic("user directory is required")
	}
	if gateway == nil {
		panic("payment gateway is required")
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return &service{
		repo:     repo,
		users:    users,
		gateway:  gateway,
		currency: strings.ToUpper(currency),
	}
}

func (s *service) Deposit(ctx context.Context, req Request) (*Result, error) {
	amount, err := money.ParsePositive(req.Amount)
	if err != nil {
		return nil, domainErrors.ErrInvalidAmount.Wrap(err)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.currency
	}
	if currency != s.currency {
		return nil, domainErrors.ErrInvalidCurrency.WithMessage("unsupported currency %q", req.Currency)
	}
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	log := logrus.WithFields(logrus.Fields{
		"user_id":         req.UserID,
		"amount":          amount.String(),
		"idempotency_key": key,
	})

	// The gateway is called before any lock is taken so a slow provider
	// never holds a wallet row.
	receipt, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		UserID:         req.UserID,
		Amount:         amount,
		Currency:       currency,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: gatewayKey(req.UserID, key),
	})
	if err != nil {
		log.WithError(err).Warn("payment gateway declined deposit")
		if errors.Is(err, payment.ErrUnsupportedPrecision) {
			return nil, domainErrors.ErrInvalidAmount.Wrap(err)
		}
		return nil, domainErrors.ErrPaymentDeclined.Wrap(err)
	}
	log = log.WithField("provider_transaction_id", receipt.ProviderTransactionID)

	result, err := s.credit(ctx, req.UserID, amount, &receipt.ProviderTransactionID)
	if errors.Is(err, repositories.ErrDuplicateProviderTransaction) {
		// A concurrent retry committed first.
		result, err = s.credit(ctx, req.UserID, amount, &receipt.ProviderTransactionID)
	}
	if err != nil {
		// The charge succeeded but nothing was credited. Retrying with the
		// same idempotency key replays the charge and credits once.
		log.WithError(err).Error("deposit charged but not credited")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"transaction_id": result.TransactionID,
		"replayed":       result.Replayed,
	}).Info("deposit committed")
	return result, nil
}

func (s *service) AdminDeposit(ctx context.Context, targetUserID uint, amount string) (*Result, error) {
	value, err := money.ParsePositive(amount)
	if err != nil {
		return nil, domainErrors.ErrInvalidAmount.Wrap(err)
	}
	ok, err := s.users.Exists(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}

	result, err := s.credit(ctx, targetUserID, value, nil)
	log := logrus.WithFields(logrus.Fields{
		"user_id": targetUserID,
		"amount":  value.String(),
	})
	if err != nil {
		log.WithError(err).Warn("admin deposit failed")
		return nil, err
	}
	log.WithField("transaction_id", result.TransactionID).Info("admin deposit committed")
	return result, nil
}

// credit adds amount to the user's wallet and records a Deposit entry. When
// providerID was already recorded the wallet is left untouched and the
// original entry is reported.
func (s *service) credit(ctx context.Context, userID uint, amount money.Amount, providerID *string) (*Result, error) {
	var result *Result
	err := s.repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		wallets, err := repositories.LockWalletsInOrder(ctx, tx, userID)
		if err != nil {
			return err
		}
		wallet := wallets[userID]

		if providerID != nil {
			existing, err := tx.FindDepositByProviderID(ctx, *providerID)
			if err != nil {
				return err
			}
			if existing != nil {
				recorded, err := replayedAmount(existing, wallet.ID, amount)
				if err != nil {
					return err
				}
				result = &Result{
					ProviderTransactionID: *providerID,
					TransactionID:         existing.ID,
					Amount:                recorded,
					Balance:               wallet.Amount(),
					Replayed:              true,
				}
				return nil
			}
		}

		credited, err := wallet.Amount().Add(amount)
		if err != nil {
			return domainErrors.ErrInvalidAmount.Wrap(err)
		}
		wallet.Balance = credited.Units()
		if err := tx.SaveBalance(ctx, wallet); err != nil {
			return fmt.Errorf("failed to credit wallet %d: %w", wallet.ID, err)
		}

		entry := &models.Transaction{
			ToWalletID:            &wallet.ID,
			Amount:                amount.String(),
			FeeAmount:             money.Zero.String(),
			Type:                  models.TransactionTypeDeposit,
			ProviderTransactionID: providerID,
		}
		if err := tx.CreateTransaction(ctx, entry); err != nil {
			return err
		}

		result = &Result{
			TransactionID: entry.ID,
			Amount:        amount,
			Balance:       credited,
		}
		if providerID != nil {
			result.ProviderTransactionID = *providerID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// gatewayKey scopes a client idempotency key to its user so two users can
// never share a provider charge.
func gatewayKey(userID uint, key string) string {
	return fmt.Sprintf("%d:%s", userID, key)
}

// replayedAmount checks that an already recorded deposit is the one being
// retried: same wallet, same amount.
func replayedAmount(existing *models.Transaction, walletID uint, amount money.Amount) (money.Amount, error) {
	if existing.ToWalletID == nil || *existing.ToWalletID != walletID {
		return 0, domainErrors.ErrIdempotencyKeyReused.WithMessage("provider transaction belongs to another wallet")
	}
	recorded, err := money.Parse(existing.Amount)
	if err != nil {
		return 0, fmt.Errorf("failed to read recorded deposit %d: %w", existing.ID, err)
	}
	if recorded != amount {
		return 0, domainErrors.ErrIdempotencyKeyReused.WithMessage("recorded deposit was %s, retry asked for %s", recorded, amount)
	}
	return recorded, nil
}
