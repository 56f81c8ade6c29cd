package handler

import (
	"context"

	"marketplace-payments/internal/adapter/http/dto"
	"marketplace-payments/internal/adapter/http/middleware"
	"marketplace-payments/internal/core/domain"
	"marketplace-payments/internal/core/ports"
	"marketplace-payments/pkg/apperror"
	"marketplace-payments/pkg/response"

	"github.com/gin-gonic/gin"
)

const statementLimit = 10

// WalletHandler handles wallet endpoints: the owner-facing statement and the
// admin-only manual mutations.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// GetStatement handles GET /api/v1/wallet. The owner comes from the JWT; a
// missing wallet is a normal empty statement, not an error.
func (h *WalletHandler) GetStatement(c *gin.Context) {
	ownerID := c.GetString(middleware.CtxOwnerID)
	if ownerID == "" {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	wallet, txns, err := h.walletSvc.Statement(c.Request.Context(), ownerID, statementLimit)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.WalletStatementResponse{Transactions: dto.FromTransactions(txns)}
	if wallet != nil {
		w := dto.FromWallet(wallet)
		resp.Wallet = &w
	}
	response.OK(c, resp)
}

// Credit handles POST /api/v1/wallet/credit.
func (h *WalletHandler) Credit(c *gin.Context) {
	h.mutate(c, h.walletSvc.Credit)
}

// Debit handles POST /api/v1/wallet/debit.
func (h *WalletHandler) Debit(c *gin.Context) {
	h.mutate(c, h.walletSvc.Debit)
}

func (h *WalletHandler) mutate(c *gin.Context, apply func(ctx context.Context, req ports.MutationRequest) (*domain.Wallet, *domain.Transaction, error)) {
	var req dto.WalletMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	wallet, txn, err := apply(c.Request.Context(), ports.MutationRequest{
		OwnerID:        req.OwnerID,
		OwnerType:      domain.ParseOwnerType(req.OwnerType),
		Amount:         req.Amount,
		Currency:       req.Currency,
		Reason:         req.Reason,
		IdempotencyKey: req.IdempotencyKey,
		Meta:           req.Meta,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.MutationResponse{
		Wallet:      dto.FromWallet(wallet),
		Transaction: dto.FromTransaction(txn),
	})
}
