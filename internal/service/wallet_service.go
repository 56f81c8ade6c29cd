package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-payments/internal/core/domain"
	"marketplace-payments/internal/core/ports"
	"marketplace-payments/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService. Every mutation runs as a
// single database transaction: lock the wallet row, write the new balance,
// insert the ledger row, commit. A partial failure rolls back both writes,
// so the balance always equals the sum of the wallet's transactions.
type WalletServiceImpl struct {
	walletRepo      ports.WalletRepository
	txRepo          ports.TransactionRepository
	transactor      ports.DBTransactor
	defaultCurrency string
	log             zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	defaultCurrency string,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo:      walletRepo,
		txRepo:          txRepo,
		transactor:      transactor,
		defaultCurrency: defaultCurrency,
		log:             log,
	}
}

// Credit increases the owner's balance, creating the wallet lazily when
// absent. Returns the updated wallet and the ledger entry recorded for the
// mutation.
func (s *WalletServiceImpl) Credit(ctx context.Context, req ports.MutationRequest) (*domain.Wallet, *domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, nil, apperror.ErrInvalidAmount()
	}
	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.EnsureForUpdate(ctx, dbTx, req.OwnerID, req.OwnerType, currency)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}

	wallet.Balance += req.Amount
	wallet.Currency = currency
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance, currency); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	txn := s.buildTransaction(wallet, domain.TransactionTypeCredit, req)
	txn.Currency = currency
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		if errors.Is(err, ports.ErrDuplicateIdempotencyKey) {
			return nil, nil, apperror.ErrDuplicateTransaction(err)
		}
		return nil, nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("owner_id", req.OwnerID).
		Int64("amount", req.Amount).
		Str("reason", req.Reason).
		Msg("wallet credited")

	return wallet, txn, nil
}

// Debit decreases the owner's balance. Fails on a missing wallet and on
// insufficient funds; neither failure leaves any ledger trace.
func (s *WalletServiceImpl) Debit(ctx context.Context, req ports.MutationRequest) (*domain.Wallet, *domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByOwnerIDForUpdate(ctx, dbTx, req.OwnerID)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, nil, apperror.ErrNotFound("wallet")
	}
	if wallet.Balance < req.Amount {
		return nil, nil, apperror.ErrInsufficientBalance()
	}

	wallet.Balance -= req.Amount
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance, wallet.Currency); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	txn := s.buildTransaction(wallet, domain.TransactionTypeDebit, req)
	txn.Currency = wallet.Currency
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		if errors.Is(err, ports.ErrDuplicateIdempotencyKey) {
			return nil, nil, apperror.ErrDuplicateTransaction(err)
		}
		return nil, nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("owner_id", req.OwnerID).
		Int64("amount", req.Amount).
		Str("reason", req.Reason).
		Msg("wallet debited")

	return wallet, txn, nil
}

// Statement returns the owner's wallet and most recent transactions.
// A missing wallet is not an error: the owner simply has no money yet.
func (s *WalletServiceImpl) Statement(ctx context.Context, ownerID string, limit int) (*domain.Wallet, []domain.Transaction, error) {
	wallet, err := s.walletRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, nil, nil
	}

	txns, err := s.txRepo.ListByWallet(ctx, wallet.ID, limit)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return wallet, txns, nil
}

func (s *WalletServiceImpl) buildTransaction(wallet *domain.Wallet, txType domain.TransactionType, req ports.MutationRequest) *domain.Transaction {
	return &domain.Transaction{
		ID:             uuid.New(),
		WalletID:       wallet.ID,
		OwnerID:        wallet.OwnerID,
		OwnerType:      wallet.OwnerType,
		Type:           txType,
		Amount:         req.Amount,
		Reason:         req.Reason,
		IdempotencyKey: req.IdempotencyKey,
		Meta:           req.Meta,
		CreatedAt:      time.Now().UTC(),
	}
}
