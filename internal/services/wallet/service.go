package wallet

import (
	"time"

	domainErrors "spark/internal/errors"
	"spark/internal/money"
	"spark/internal/repositories"
	"spark/internal/services/deposit"
	"spark/internal/services/gift"
	"spark/internal/services/notification"
	"spark/internal/services/transfer"

	"github.com/sirupsen/logrus"
)

type service struct {
	repo      repositories.WalletRepository
	users     UserDirectory
	transfers transfer.Service
	deposits  deposit.Service
	gifts     gift.Service
	cache     BalanceCache
	notifier  notification.Notifier
	metrics   MetricsCollector
}

// NewService creates a new wallet service. cache, notifier and metrics are
// optional.
func NewService(
	repo repositories.WalletRepository,
	users UserDirectory,
	transfers transfer.Service,
	deposits deposit.Service,
	gifts gift.Service,
	cache BalanceCache,
	notifier notification.Notifier,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if users == nil {
		panic("user directory is required")
	}
	if transfers == nil {
		panic("transfer service is required")
	}
	if deposits == nil {
		panic("deposit service is required")
	}
	if gifts == nil {
		panic("gift service is required")
	}

	if cache == nil {
		cache = noopCache{}
	}
	// Metrics is optional, create no-op collector if nil
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:      repo,
		users:     users,
		transfers: transfers,
		deposits:  deposits,
		gifts:     gifts,
		cache:     cache,
		notifier:  notifier,
		metrics:   metrics,
	}
}

// observe records the outcome of one facade call.
func (s *service) observe(operation string, start time.Time, err error) {
	s.metrics.RecordOperationDuration(operation, time.Since(start))
	if err == nil {
		s.metrics.RecordOperationResult(operation, "success")
		return
	}

	kind := string(domainErrors.KindOf(err))
	if kind == "" {
		kind = "internal"
		logrus.WithError(err).WithField("operation", operation).Error("wallet operation failed")
	}
	s.metrics.RecordError(operation, kind)
	s.metrics.RecordOperationResult(operation, "error")
}

// balanceChanged builds the post-commit event for one side of a move.
// A negative delta is a debit.
func balanceChanged(userID, counterpartyID, transactionID uint, delta, balance money.Amount) notification.Event {
	ev := notification.NewEvent(notification.EventBalanceChanged, userID)
	ev.CounterpartyID = counterpartyID
	ev.TransactionID = transactionID
	ev.Amount = delta.String()
	ev.Balance = balance.String()
	return ev
}

func (s *service) notify(events ...notification.Event) {
	if s.notifier == nil || len(events) == 0 {
		return
	}
	s.notifier.Notify(events...)
}
