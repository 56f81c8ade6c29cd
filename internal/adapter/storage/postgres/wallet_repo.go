package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-payments/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, owner_id, owner_type, balance, currency, created_at, updated_at`

// EnsureForUpdate creates the wallet for ownerID if absent (balance 0, given
// currency), then returns the row locked FOR UPDATE. Wallet identity is
// owner_id alone; owner_type is recorded but not part of the key. Must be
// called within a transaction.
func (r *WalletRepo) EnsureForUpdate(ctx context.Context, tx pgx.Tx, ownerID string, ownerType domain.OwnerType, currency string) (*domain.Wallet, error) {
	now := time.Now().UTC()
	insert := `INSERT INTO wallets (id, owner_id, owner_type, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5, $5)
		ON CONFLICT (owner_id) DO NOTHING`

	if _, err := tx.Exec(ctx, insert, uuid.New(), ownerID, ownerType, currency, now); err != nil {
		return nil, fmt.Errorf("ensure wallet: %w", err)
	}

	w, err := r.GetByOwnerIDForUpdate(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("wallet for owner %s missing after ensure", ownerID)
	}
	return w, nil
}

// GetByOwnerIDForUpdate fetches a wallet with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByOwnerIDForUpdate(ctx context.Context, tx pgx.Tx, ownerID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_id = $1 FOR UPDATE`
	return scanWallet(tx.QueryRow(ctx, query, ownerID))
}

// GetByOwnerID fetches a wallet without locking.
func (r *WalletRepo) GetByOwnerID(ctx context.Context, ownerID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, ownerID))
}

// UpdateBalance writes the new balance (and currency, which follows the most
// recent gateway payment) within a transaction.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64, currency string) error {
	query := `UPDATE wallets SET balance = $1, currency = $2, updated_at = NOW() WHERE id = $3`

	tag, err := tx.Exec(ctx, query, balance, currency, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.OwnerID, &w.OwnerType, &w.Balance,
		&w.Currency, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}
