package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketplace-payments/internal/core/domain"
	"marketplace-payments/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// TransactionRepo implements ports.TransactionRepository over the append-only
// transactions table.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, wallet_id, owner_id, owner_type, type, amount, currency, reason, idempotency_key, meta, created_at`

// Create inserts a ledger row within a database transaction. The unique
// index on idempotency_key makes duplicate webhook credits fail here rather
// than after a racy existence check.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, wallet_id, owner_id, owner_type, type, amount, currency, reason, idempotency_key, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.WalletID, t.OwnerID, t.OwnerType, t.Type,
		t.Amount, t.Currency, t.Reason, t.IdempotencyKey, t.Meta, t.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert transaction: %w", ports.ErrDuplicateIdempotencyKey)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByIdempotencyKey fetches a transaction by its idempotency key.
func (r *TransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE idempotency_key = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, key))
}

// ListByWallet fetches the most recent transactions for a wallet, newest first.
func (r *TransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE wallet_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.WalletID, &t.OwnerID, &t.OwnerType, &t.Type,
			&t.Amount, &t.Currency, &t.Reason, &t.IdempotencyKey, &t.Meta, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.WalletID, &t.OwnerID, &t.OwnerType, &t.Type,
		&t.Amount, &t.Currency, &t.Reason, &t.IdempotencyKey, &t.Meta, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
