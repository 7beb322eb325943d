// Package memory is an in-process ledger store with the same locking and
// atomicity behaviour as the SQL store: exclusive per-wallet locks with a
// bounded wait, and writes that stay private to a transaction until commit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domainErrors "spark/internal/errors"
	"spark/internal/models"
	"spark/internal/repositories"
)

// Store implements repositories.WalletRepository and repositories.UserRepository.
type Store struct {
	mu sync.Mutex

	wallets      map[uint]models.Wallet // by wallet id
	walletByUser map[uint]uint
	entries      []models.Transaction
	gifts        []models.Gift
	providerIDs  map[string]uint
	users        map[uint]models.User

	locks map[uint]chan struct{}

	nextWalletID uint
	nextEntryID  uint
	nextGiftID   uint
	nextUserID   uint

	lockTimeout time.Duration
	now         func() time.Time
}

// NewStore creates an empty store. lockTimeout bounds each wallet lock wait;
// zero waits until the context is done.
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		wallets:      make(map[uint]models.Wallet),
		walletByUser: make(map[uint]uint),
		providerIDs:  make(map[string]uint),
		users:        make(map[uint]models.User),
		locks:        make(map[uint]chan struct{}),
		lockTimeout:  lockTimeout,
		now:          time.Now,
	}
}

var (
	_ repositories.WalletRepository = (*Store)(nil)
	_ repositories.UserRepository   = (*Store)(nil)
)

func (s *Store) ExecuteInTransaction(ctx context.Context, fn func(repositories.LedgerTx) error) error {
	tx := &ledgerTx{
		store:  s,
		held:   make(map[uint]struct{}),
		staged: make(map[uint]models.Wallet),
	}
	// Locks are released on every exit path, panics included.
	defer tx.releaseAll()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domainErrors.Classify(err)
	}
	return tx.commit()
}

func (s *Store) GetByUserID(_ context.Context, userID uint) (*models.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.walletByUser[userID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	w := s.wallets[id]
	return &w, nil
}

func (s *Store) GetTransactionHistory(_ context.Context, walletID uint, limit, offset int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Transaction
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if (e.FromWalletID != nil && *e.FromWalletID == walletID) || (e.ToWalletID != nil && *e.ToWalletID == walletID) {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return []models.Transaction{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Transactions returns a copy of every committed ledger entry, oldest first.
func (s *Store) Transactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Transaction(nil), s.entries...)
}

// Gifts returns a copy of every committed gift, oldest first.
func (s *Store) Gifts() []models.Gift {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Gift(nil), s.gifts...)
}

// TotalBalance sums every committed wallet balance.
func (s *Store) TotalBalance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, w := range s.wallets {
		total += w.Balance
	}
	return total
}

// SeedWallet sets a user's committed balance directly, creating the wallet
// if needed. It bypasses the ledger and is meant for fixtures.
func (s *Store) SeedWallet(userID uint, balance int64) *models.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.ensureWalletLocked(userID)
	w.Balance = balance
	s.wallets[w.ID] = w
	return &w
}

// AddUser registers a user id in the directory.
func (s *Store) AddUser(ids ...uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		u := models.User{Role: models.RoleUser}
		u.ID = id
		s.users[id] = u
		if id > s.nextUserID {
			s.nextUserID = id
		}
	}
}

func (s *Store) Exists(_ context.Context, userID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[userID]
	return ok, nil
}

func (s *Store) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email != "" && u.Email == user.Email {
			return repositories.ErrEmailTaken
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

// ensureWalletLocked returns the committed wallet for userID, creating an
// empty one. s.mu must be held. Creation is not staged: an empty wallet and
// an absent one are indistinguishable to every ledger operation.
func (s *Store) ensureWalletLocked(userID uint) models.Wallet {
	if id, ok := s.walletByUser[userID]; ok {
		return s.wallets[id]
	}
	s.nextWalletID++
	now := s.now()
	w := models.Wallet{
		ID:                    s.nextWalletID,
		UserID:                userID,
		WithdrawFeePercentage: "0",
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	s.wallets[w.ID] = w
	s.walletByUser[userID] = w.ID
	return w
}

func (s *Store) lockChan(walletID uint) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[walletID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[walletID] = ch
	}
	return ch
}

// ledgerTx stages writes until commit. Ledger ids are drawn at creation time,
// so a rolled back transaction leaves gaps, like a database sequence.
type ledgerTx struct {
	store *Store

	held    map[uint]struct{}
	staged  map[uint]models.Wallet
	entries []models.Transaction
	gifts   []models.Gift
}

func (t *ledgerTx) GetOrCreateWallet(_ context.Context, userID uint) (*models.Wallet, error) {
	t.store.mu.Lock()
	w := t.store.ensureWalletLocked(userID)
	t.store.mu.Unlock()

	if staged, ok := t.staged[w.ID]; ok {
		return &staged, nil
	}
	return &w, nil
}

func (t *ledgerTx) LockWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	t.store.mu.Lock()
	_, exists := t.store.wallets[walletID]
	t.store.mu.Unlock()
	if !exists {
		return nil, repositories.ErrWalletNotFound
	}

	if _, ok := t.held[walletID]; !ok {
		if err := t.acquire(ctx, walletID); err != nil {
			return nil, err
		}
		t.held[walletID] = struct{}{}
	}

	if staged, ok := t.staged[walletID]; ok {
		return &staged, nil
	}
	t.store.mu.Lock()
	w := t.store.wallets[walletID]
	t.store.mu.Unlock()
	return &w, nil
}

func (t *ledgerTx) acquire(ctx context.Context, walletID uint) error {
	ch := t.store.lockChan(walletID)

	var timeout <-chan time.Time
	if t.store.lockTimeout > 0 {
		timer := time.NewTimer(t.store.lockTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case ch <- struct{}{}:
		return nil
	case <-timeout:
		return domainErrors.ErrLockTimeout.WithMessage("timed out waiting for lock on wallet %d", walletID)
	case <-ctx.Done():
		return domainErrors.Classify(ctx.Err())
	}
}

func (t *ledgerTx) SaveBalance(_ context.Context, wallet *models.Wallet) error {
	if _, ok := t.held[wallet.ID]; !ok {
		return repositories.ErrWalletNotLocked
	}
	w := *wallet
	w.UpdatedAt = t.store.now()
	t.staged[wallet.ID] = w
	return nil
}

func (t *ledgerTx) CreateTransaction(_ context.Context, entry *models.Transaction) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if entry.ProviderTransactionID != nil {
		if _, dup := t.store.providerIDs[*entry.ProviderTransactionID]; dup {
			return repositories.ErrDuplicateProviderTransaction
		}
		for _, e := range t.entries {
			if e.ProviderTransactionID != nil && *e.ProviderTransactionID == *entry.ProviderTransactionID {
				return repositories.ErrDuplicateProviderTransaction
			}
		}
	}
	if entry.FeeAmount == "" {
		entry.FeeAmount = "0"
	}
	t.store.nextEntryID++
	entry.ID = t.store.nextEntryID
	entry.CreatedAt = t.store.now()
	t.entries = append(t.entries, *entry)
	return nil
}

func (t *ledgerTx) CreateGift(_ context.Context, gift *models.Gift) error {
	if !t.hasEntry(gift.TransactionID) {
		return fmt.Errorf("failed to create gift: transaction %d not found", gift.TransactionID)
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.nextGiftID++
	gift.ID = t.store.nextGiftID
	gift.CreatedAt = t.store.now()
	t.gifts = append(t.gifts, *gift)
	return nil
}

func (t *ledgerTx) hasEntry(id uint) bool {
	for _, e := range t.entries {
		if e.ID == id {
			return true
		}
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, e := range t.store.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (t *ledgerTx) FindDepositByProviderID(_ context.Context, providerTransactionID string) (*models.Transaction, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	id, ok := t.store.providerIDs[providerTransactionID]
	if !ok {
		return nil, nil
	}
	for _, e := range t.store.entries {
		if e.ID == id && e.Type == models.TransactionTypeDeposit {
			cp := e
			return &cp, nil
		}
	}
	return nil, nil
}

// commit applies staged writes atomically. It enforces the constraints the
// SQL schema enforces: non-negative balances and unique provider ids.
func (t *ledgerTx) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range t.staged {
		if w.Balance < 0 {
			return fmt.Errorf("wallet %d: balance would be negative", w.ID)
		}
	}
	for _, e := range t.entries {
		if e.ProviderTransactionID == nil {
			continue
		}
		if _, dup := s.providerIDs[*e.ProviderTransactionID]; dup {
			return repositories.ErrDuplicateProviderTransaction
		}
	}

	ids := make([]uint, 0, len(t.staged))
	for id := range t.staged {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		s.wallets[id] = t.staged[id]
	}
	for _, e := range t.entries {
		s.entries = append(s.entries, e)
		if e.ProviderTransactionID != nil {
			s.providerIDs[*e.ProviderTransactionID] = e.ID
		}
	}
	s.gifts = append(s.gifts, t.gifts...)
	return nil
}

func (t *ledgerTx) releaseAll() {
	for id := range t.held {
		ch := t.store.lockChan(id)
		<-ch
	}
	t.held = nil
}
