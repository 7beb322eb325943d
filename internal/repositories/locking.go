package repositories

import (
	"context"
	"fmt"
	"sort"

	"spark/internal/models"
)

// LockWalletsInOrder resolves (creating if needed) and locks the wallets of
// the given users in ascending user id order. Every operation that touches
// more than one wallet must lock through here; a single global order is what
// keeps concurrent two-party operations free of deadlocks.
//
// Duplicate ids are locked once. The returned map is keyed by user id.
func LockWalletsInOrder(ctx context.Context, tx LedgerTx, userIDs ...uint) (map[uint]*models.Wallet, error) {
	ordered := make([]uint, 0, len(userIDs))
	seen := make(map[uint]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	wallets := make(map[uint]*models.Wallet, len(ordered))
	for _, userID := range ordered {
		wallet, err := tx.GetOrCreateWallet(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve wallet for user %d: %w", userID, err)
		}
		locked, err := tx.LockWallet(ctx, wallet.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock wallet %d: %w", wallet.ID, err)
		}
		wallets[userID] = locked
	}
	return wallets, nil
}
