package ports

import (
	"context"
	"errors"

	"marketplace-payments/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrDuplicateIdempotencyKey is returned by TransactionRepository.Create when
// the insert hits the unique constraint on idempotency_key. The ledger itself
// enforces at-most-once crediting, so callers treat this as "already done"
// rather than as a failure.
var ErrDuplicateIdempotencyKey = errors.New("transaction with this idempotency key already exists")

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks so the read,
// the balance write and the ledger insert form one atomic unit.
type WalletRepository interface {
	// EnsureForUpdate creates the wallet if absent (balance 0, given
	// currency) and returns it locked FOR UPDATE. Must run inside tx.
	EnsureForUpdate(ctx context.Context, tx pgx.Tx, ownerID string, ownerType domain.OwnerType, currency string) (*domain.Wallet, error)
	// GetByOwnerIDForUpdate locks an existing wallet. Returns nil, nil when
	// no wallet exists for the owner.
	GetByOwnerIDForUpdate(ctx context.Context, tx pgx.Tx, ownerID string) (*domain.Wallet, error)
	// GetByOwnerID is a non-locking read. Returns nil, nil when absent.
	GetByOwnerID(ctx context.Context, ownerID string) (*domain.Wallet, error)
	// UpdateBalance writes the new balance within a transaction.
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64, currency string) error
}

// TransactionRepository defines persistence for the append-only ledger.
type TransactionRepository interface {
	// Create inserts a ledger row within a database transaction. Returns
	// ErrDuplicateIdempotencyKey when the idempotency key is already taken.
	Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	// GetByIdempotencyKey returns nil, nil when no transaction carries key.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	// ListByWallet returns the most recent transactions, newest first.
	ListByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
