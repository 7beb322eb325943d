package gift

import (
	"context"
	"fmt"
	"strings"

	domainErrors "spark/internal/errors"
	"spark/internal/models"
	"spark/internal/repositories"
	"spark/internal/services/notification"
	"spark/internal/services/transfer"

	"github.com/sirupsen/logrus"
)

const maxGiftKindLength = 128

type service struct {
	repo      repositories.WalletRepository
	users     UserDirectory
	transfers transfer.Service
	notifier  notification.Notifier
}

// NewService creates the gift orchestrator. notifier may be nil, in which
// case no events are emitted.
func NewService(repo repositories.WalletRepository, users UserDirectory, transfers transfer.Service, notifier notification.Notifier) Service {
	if repo == nil {
		panic("repo is required")
	}
	if users == nil {
		panic("user directory is required")
	}
	if transfers == nil {
		panic("transfer service is required")
	}
	return &service{
		repo:      repo,
		users:     users,
		transfers: transfers,
		notifier:  notifier,
	}
}

func (s *service) SendGift(ctx context.Context, req Request) (*Result, error) {
	if req.SenderID == req.ReceiverID {
		return nil, domainErrors.ErrSelfTransfer
	}
	kind := strings.TrimSpace(req.GiftKind)
	if kind == "" {
		return nil, domainErrors.ErrInvalidGift
	}
	if len(kind) > maxGiftKindLength {
		return nil, domainErrors.ErrInvalidGift.WithMessage("gift kind exceeds %d characters", maxGiftKindLength)
	}

	ok, err := s.users.Exists(ctx, req.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up receiver: %w", err)
	}
	if !ok {
		return nil, domainErrors.ErrRecipientNotFound
	}
	ok, err = s.users.Exists(ctx, req.SenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up sender: %w", err)
	}
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}

	var (
		moved *transfer.Result
		gift  *models.Gift
	)
	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		r, err := s.transfers.ExecuteInTx(ctx, tx, transfer.Request{
			FromUserID: req.SenderID,
			ToUserID:   req.ReceiverID,
			Amount:     req.Amount,
			Kind:       models.TransactionTypeTransfer,
		})
		if err != nil {
			return err
		}

		g := &models.Gift{
			SenderID:      req.SenderID,
			ReceiverID:    req.ReceiverID,
			GiftKind:      kind,
			Amount:        r.Transaction.Amount,
			Message:       req.Message,
			TransactionID: r.Transaction.ID,
		}
		if err := tx.CreateGift(ctx, g); err != nil {
			return fmt.Errorf("failed to record gift: %w", err)
		}
		moved, gift = r, g
		return nil
	})

	log := logrus.WithFields(logrus.Fields{
		"sender_id":   req.SenderID,
		"receiver_id": req.ReceiverID,
		"gift_kind":   kind,
	})
	if err != nil {
		log.WithError(err).Warn("gift failed")
		return nil, err
	}

	result := &Result{
		GiftID:          gift.ID,
		TransactionID:   moved.Transaction.ID,
		Amount:          moved.Amount,
		SenderBalance:   moved.FromBalance,
		ReceiverBalance: moved.ToBalance,
	}
	log.WithFields(logrus.Fields{
		"gift_id":        result.GiftID,
		"transaction_id": result.TransactionID,
	}).Info("gift committed")

	s.notify(req, gift, result)
	return result, nil
}

// notify runs after commit. Delivery is best effort and never affects the
// gift's outcome.
func (s *service) notify(req Request, gift *models.Gift, result *Result) {
	if s.notifier == nil {
		return
	}

	received := notification.NewEvent(notification.EventGiftReceived, req.ReceiverID)
	received.CounterpartyID = req.SenderID
	received.TransactionID = result.TransactionID
	received.GiftID = gift.ID
	received.GiftKind = gift.GiftKind
	received.Amount = gift.Amount
	if gift.Message != nil {
		received.Message = *gift.Message
	}

	sender := notification.NewEvent(notification.EventBalanceChanged, req.SenderID)
	sender.CounterpartyID = req.ReceiverID
	sender.TransactionID = result.TransactionID
	sender.Amount = "-" + gift.Amount
	sender.Balance = result.SenderBalance.String()

	receiver := notification.NewEvent(notification.EventBalanceChanged, req.ReceiverID)
	receiver.CounterpartyID = req.SenderID
	receiver.TransactionID = result.TransactionID
	receiver.Amount = gift.Amount
	receiver.Balance = result.ReceiverBalance.String()

	s.notifier.Notify(received, sender, receiver)
}
