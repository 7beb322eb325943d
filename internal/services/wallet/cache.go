package wallet

import (
	"context"

	"github.com/sirupsen/logrus"
)

// noopCache is used when no cache is configured; every lookup misses.
type noopCache struct{}

func (noopCache) GetBalance(context.Context, uint) (string, bool, error) { return "", false, nil }
func (noopCache) SetBalance(context.Context, uint, string) error         { return nil }
func (noopCache) InvalidateBalances(context.Context, ...uint) error      { return nil }

// invalidateBalances drops cached balances for every user whose wallet just
// changed. Failures are logged; a stale entry expires with its TTL.
func (s *service) invalidateBalances(ctx context.Context, userIDs ...uint) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := s.cache.InvalidateBalances(ctx, userIDs...); err != nil {
		logrus.WithError(err).WithField("user_ids", userIDs).Warn("failed to invalidate cached balances")
	}
}

// cachedBalance returns the cached balance for userID, if any. Cache errors
// count as misses.
func (s *service) cachedBalance(ctx context.Context, userID uint) (string, bool) {
	balance, ok, err := s.cache.GetBalance(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("balance cache lookup failed")
		return "", false
	}
	return balance, ok
}

func (s *service) storeBalance(ctx context.Context, userID uint, balance string) {
	if err := s.cache.SetBalance(ctx, userID, balance); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to cache balance")
	}
}
