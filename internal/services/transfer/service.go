package transfer

import (
	"context"
	"fmt"

	domainErrors "spark/internal/errors"
	"spark/internal/models"
	"spark/internal/money"
	"spark/internal/repositories"

	"github.com/sirupsen/logrus"
)

// service implements the transfer Service interface.
type service struct {
	repo  repositories.WalletRepository
	users UserDirectory
}

// NewService creates a new transfer service instance.
func NewService(repo repositories.WalletRepository, users UserDirectory) Service {
	if repo == nil {
		panic("repo is required")
	}
	if users == nil {
		panic("user directory is required")
	}
	return &service{
		repo:  repo,
		users: users,
	}
}

func (s *service) Transfer(ctx context.Context, req Request) (*Result, error) {
	amount, err := validate(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkParticipants(ctx, req.FromUserID, req.ToUserID); err != nil {
		return nil, err
	}

	var result *Result
	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		r, err := s.move(ctx, tx, req, amount)
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	log := logrus.WithFields(logrus.Fields{
		"from_user_id": req.FromUserID,
		"to_user_id":   req.ToUserID,
		"amount":       amount.String(),
		"kind":         req.Kind,
	})
	if err != nil {
		log.WithError(err).Warn("transfer failed")
		return nil, err
	}
	log.WithField("transaction_id", result.Transaction.ID).Info("transfer committed")
	return result, nil
}

func (s *service) ExecuteInTx(ctx context.Context, tx repositories.LedgerTx, req Request) (*Result, error) {
	amount, err := validate(req)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, tx, req, amount)
}

// validate runs the checks that need no database access.
func validate(req Request) (money.Amount, error) {
	if req.Kind != models.TransactionTypeTransfer && req.Kind != models.TransactionTypeSuperLike {
		return 0, domainErrors.ErrInvalidKind
	}
	if req.FromUserID == req.ToUserID {
		return 0, domainErrors.ErrSelfTransfer
	}
	amount, err := money.ParsePositive(req.Amount)
	if err != nil {
		return 0, domainErrors.ErrInvalidAmount.Wrap(err)
	}
	return amount, nil
}

func (s *service) checkParticipants(ctx context.Context, fromUserID, toUserID uint) error {
	ok, err := s.users.Exists(ctx, toUserID)
	if err != nil {
		return fmt.Errorf("failed to look up recipient: %w", err)
	}
	if !ok {
		return domainErrors.ErrRecipientNotFound
	}

	ok, err = s.users.Exists(ctx, fromUserID)
	if err != nil {
		return fmt.Errorf("failed to look up sender: %w", err)
	}
	if !ok {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

// move locks both wallets in canonical order, re-checks the sender's balance
// against the locked row and writes both balances plus one ledger entry.
func (s *service) move(ctx context.Context, tx repositories.LedgerTx, req Request, amount money.Amount) (*Result, error) {
	wallets, err := repositories.LockWalletsInOrder(ctx, tx, req.FromUserID, req.ToUserID)
	if err != nil {
		return nil, err
	}
	from, to := wallets[req.FromUserID], wallets[req.ToUserID]

	if from.Amount() < amount {
		return nil, domainErrors.ErrInsufficientBalance.WithMessage(
			"insufficient wallet balance: have %s, need %s", from.Amount(), amount)
	}
	credited, err := to.Amount().Add(amount)
	if err != nil {
		return nil, domainErrors.ErrInvalidAmount.Wrap(err)
	}

	from.Balance = (from.Amount() - amount).Units()
	to.Balance = credited.Units()

	if err := tx.SaveBalance(ctx, from); err != nil {
		return nil, fmt.Errorf("failed to debit wallet %d: %w", from.ID, err)
	}
	if err := tx.SaveBalance(ctx, to); err != nil {
		return nil, fmt.Errorf("failed to credit wallet %d: %w", to.ID, err)
	}

	entry := &models.Transaction{
		FromWalletID: &from.ID,
		ToWalletID:   &to.ID,
		Amount:       amount.String(),
		FeeAmount:    money.Zero.String(),
		Type:         req.Kind,
	}
	if err := tx.CreateTransaction(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record transfer: %w", err)
	}

	return &Result{
		Transaction: entry,
		Amount:      amount,
		FromBalance: from.Amount(),
		ToBalance:   to.Amount(),
	}, nil
}

