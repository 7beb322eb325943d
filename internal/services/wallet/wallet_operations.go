package wallet

import (
	"context"
	"time"

	"spark/internal/models"
	"spark/internal/services/deposit"
	"spark/internal/services/gift"
	"spark/internal/services/transfer"
)

func (s *service) Transfer(ctx context.Context, actorUserID, toUserID uint, amount string) (res *TransferResult, err error) {
	defer func(start time.Time) { s.observe(OpTransfer, start, err) }(time.Now())
	return s.move(ctx, actorUserID, toUserID, amount, models.TransactionTypeTransfer)
}

func (s *service) SuperLike(ctx context.Context, actorUserID, toUserID uint, amount string) (res *TransferResult, err error) {
	defer func(start time.Time) { s.observe(OpSuperLike, start, err) }(time.Now())
	return s.move(ctx, actorUserID, toUserID, amount, models.TransactionTypeSuperLike)
}

// AdminTransfer moves value between two arbitrary users. Authorization is
// the caller's concern.
func (s *service) AdminTransfer(ctx context.Context, fromUserID, toUserID uint, amount string) (res *TransferResult, err error) {
	defer func(start time.Time) { s.observe(OpAdminTransfer, start, err) }(time.Now())
	return s.move(ctx, fromUserID, toUserID, amount, models.TransactionTypeTransfer)
}

func (s *service) move(ctx context.Context, fromUserID, toUserID uint, amount string, kind models.TransactionType) (*TransferResult, error) {
	r, err := s.transfers.Transfer(ctx, transfer.Request{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Amount:     amount,
		Kind:       kind,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransaction(kind, r.Amount)
	s.invalidateBalances(ctx, fromUserID, toUserID)
	s.notify(
		balanceChanged(fromUserID, toUserID, r.Transaction.ID, -r.Amount, r.FromBalance),
		balanceChanged(toUserID, fromUserID, r.Transaction.ID, r.Amount, r.ToBalance),
	)

	return &TransferResult{
		TransactionID: r.Transaction.ID,
		Amount:        r.Amount.String(),
		FromBalance:   r.FromBalance.String(),
		ToBalance:     r.ToBalance.String(),
	}, nil
}

func (s *service) Deposit(ctx context.Context, req DepositRequest) (res *DepositResult, err error) {
	defer func(start time.Time) { s.observe(OpDeposit, start, err) }(time.Now())

	r, err := s.deposits.Deposit(ctx, deposit.Request{
		UserID:         req.UserID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return s.credited(ctx, req.UserID, r), nil
}

func (s *service) AdminDeposit(ctx context.Context, targetUserID uint, amount string) (res *DepositResult, err error) {
	defer func(start time.Time) { s.observe(OpAdminDeposit, start, err) }(time.Now())

	r, err := s.deposits.AdminDeposit(ctx, targetUserID, amount)
	if err != nil {
		return nil, err
	}
	return s.credited(ctx, targetUserID, r), nil
}

// credited runs the post-commit side effects of a deposit. A replayed
// deposit changed nothing and emits nothing.
func (s *service) credited(ctx context.Context, userID uint, r *deposit.Result) *DepositResult {
	if !r.Replayed {
		s.metrics.RecordTransaction(models.TransactionTypeDeposit, r.Amount)
		s.invalidateBalances(ctx, userID)
		s.notify(balanceChanged(userID, 0, r.TransactionID, r.Amount, r.Balance))
	}
	return &DepositResult{
		ProviderTransactionID: r.ProviderTransactionID,
		TransactionID:         r.TransactionID,
		Amount:                r.Amount.String(),
		Balance:               r.Balance.String(),
		Replayed:              r.Replayed,
	}
}

// SendGift delegates to the gift orchestrator, which emits its own events.
func (s *service) SendGift(ctx context.Context, req GiftRequest) (res *GiftResult, err error) {
	defer func(start time.Time) { s.observe(OpSendGift, start, err) }(time.Now())

	r, err := s.gifts.SendGift(ctx, gift.Request{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		GiftKind:   req.GiftKind,
		Amount:     req.Amount,
		Message:    req.Message,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransaction(models.TransactionTypeTransfer, r.Amount)
	s.invalidateBalances(ctx, req.SenderID, req.ReceiverID)

	return &GiftResult{
		GiftID:        r.GiftID,
		TransactionID: r.TransactionID,
		Amount:        r.Amount.String(),
		SenderBalance: r.SenderBalance.String(),
	}, nil
}
