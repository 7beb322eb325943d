package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "spark/internal/errors"
	"spark/internal/models"
	"spark/internal/money"
	"spark/internal/repositories"
)

// GetBalance returns the user's balance with eight fractional digits. A user
// who has never held funds has no wallet row yet and reads as zero.
func (s *service) GetBalance(ctx context.Context, userID uint) (balance string, err error) {
	defer func(start time.Time) { s.observe(OpGetBalance, start, err) }(time.Now())

	if cached, ok := s.cachedBalance(ctx, userID); ok {
		s.metrics.RecordCacheHit(OpGetBalance)
		return cached, nil
	}
	s.metrics.RecordCacheMiss(OpGetBalance)

	w, err := s.lookupWallet(ctx, userID)
	if err != nil {
		return "", err
	}
	balance = money.Zero.String()
	if w != nil {
		balance = w.Amount().String()
	}
	s.storeBalance(ctx, userID, balance)
	return balance, nil
}

// GetTransactionHistory lists the user's ledger entries, newest first.
func (s *service) GetTransactionHistory(ctx context.Context, userID uint, limit, offset int) (entries []HistoryEntry, err error) {
	defer func(start time.Time) { s.observe(OpHistory, start, err) }(time.Now())

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	w, err := s.lookupWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return []HistoryEntry{}, nil
	}

	rows, err := s.repo.GetTransactionHistory(ctx, w.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction history: %w", err)
	}
	entries = make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toHistoryEntry(w.ID, row))
	}
	return entries, nil
}

// lookupWallet returns the user's wallet, or nil when the user exists but
// has none yet.
func (s *service) lookupWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	w, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, repositories.ErrWalletNotFound) {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	return nil, nil
}

func toHistoryEntry(walletID uint, row models.Transaction) HistoryEntry {
	entry := HistoryEntry{
		ID:        row.ID,
		Type:      row.Type,
		Direction: DirectionIn,
		Amount:    formatStored(row.Amount),
		FeeAmount: formatStored(row.FeeAmount),
		CreatedAt: row.CreatedAt,
	}
	if row.FromWalletID != nil && *row.FromWalletID == walletID {
		entry.Direction = DirectionOut
		entry.CounterpartyWalletID = row.ToWalletID
	} else {
		entry.CounterpartyWalletID = row.FromWalletID
	}
	return entry
}

// formatStored normalises a decimal column to eight fractional digits.
func formatStored(v string) string {
	a, err := money.Parse(v)
	if err != nil {
		return v
	}
	return a.String()
}
