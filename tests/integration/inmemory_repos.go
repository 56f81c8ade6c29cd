package integration

import (
	"context"
	"sync"
	"time"

	"marketplace-payments/internal/core/domain"
	"marketplace-payments/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// memLedger is an in-memory stand-in for the postgres wallet and transaction
// repositories. A single transaction mutex serializes Begin..Commit windows,
// which is how SELECT ... FOR UPDATE behaves for contended wallet rows: the
// second transaction waits for the first to finish.
type memLedger struct {
	txMu sync.Mutex // held for the lifetime of each transaction

	mu      sync.RWMutex // guards the maps below
	wallets map[string]*domain.Wallet
	txns    []domain.Transaction
	keys    map[string]bool
}

func newMemLedger() *memLedger {
	return &memLedger{
		wallets: make(map[string]*domain.Wallet),
		keys:    make(map[string]bool),
	}
}

// memTx embeds pgx.Tx for interface satisfaction; only the lifecycle methods
// are implemented. Writes are staged and applied on Commit.
type memTx struct {
	pgx.Tx
	store  *memLedger
	staged []func()
	done   bool
}

func (t *memTx) Commit(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.store.mu.Lock()
	for _, apply := range t.staged {
		apply()
	}
	t.store.mu.Unlock()
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

// Begin implements ports.DBTransactor.
func (s *memLedger) Begin(_ context.Context) (pgx.Tx, error) {
	s.txMu.Lock()
	return &memTx{store: s}, nil
}

// --- ports.WalletRepository ---

func (s *memLedger) EnsureForUpdate(_ context.Context, tx pgx.Tx, ownerID string, ownerType domain.OwnerType, currency string) (*domain.Wallet, error) {
	s.mu.RLock()
	existing, ok := s.wallets[ownerID]
	s.mu.RUnlock()
	if ok {
		cp := *existing
		return &cp, nil
	}

	now := time.Now().UTC()
	w := &domain.Wallet{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		OwnerType: ownerType,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	mt := tx.(*memTx)
	mt.staged = append(mt.staged, func() {
		if _, ok := s.wallets[ownerID]; !ok {
			cp := *w
			s.wallets[ownerID] = &cp
		}
	})
	return w, nil
}

func (s *memLedger) GetByOwnerIDForUpdate(_ context.Context, _ pgx.Tx, ownerID string) (*domain.Wallet, error) {
	return s.GetByOwnerID(context.Background(), ownerID)
}

func (s *memLedger) GetByOwnerID(_ context.Context, ownerID string) (*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[ownerID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (s *memLedger) UpdateBalance(_ context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64, currency string) error {
	mt := tx.(*memTx)
	mt.staged = append(mt.staged, func() {
		for _, w := range s.wallets {
			if w.ID == walletID {
				w.Balance = balance
				w.Currency = currency
				w.UpdatedAt = time.Now().UTC()
			}
		}
	})
	return nil
}

// --- ports.TransactionRepository ---

func (s *memLedger) Create(_ context.Context, tx pgx.Tx, t *domain.Transaction) error {
	if t.IdempotencyKey != nil {
		s.mu.RLock()
		taken := s.keys[*t.IdempotencyKey]
		s.mu.RUnlock()
		if taken {
			return ports.ErrDuplicateIdempotencyKey
		}
	}
	cp := *t
	mt := tx.(*memTx)
	mt.staged = append(mt.staged, func() {
		s.txns = append(s.txns, cp)
		if cp.IdempotencyKey != nil {
			s.keys[*cp.IdempotencyKey] = true
		}
	})
	return nil
}

func (s *memLedger) GetByIdempotencyKey(_ context.Context, key string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.txns {
		if s.txns[i].IdempotencyKey != nil && *s.txns[i].IdempotencyKey == key {
			cp := s.txns[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memLedger) ListByWallet(_ context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Transaction
	for i := len(s.txns) - 1; i >= 0; i-- {
		if s.txns[i].WalletID == walletID {
			out = append(out, s.txns[i])
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// transactionCount reports how many ledger rows exist, for assertions.
func (s *memLedger) transactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txns)
}

// balanceOf reads a wallet balance directly, bypassing the HTTP layer.
func (s *memLedger) balanceOf(ownerID string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[ownerID]
	if !ok {
		return 0, false
	}
	return w.Balance, true
}
