package dto

import (
	"encoding/json"
	"time"

	"marketplace-payments/internal/core/domain"
)

// CreateOrderRequest is the request body for creating a gateway order.
// Amount is in major currency units (rupees, not paise); conversion to minor
// units happens at this boundary and nowhere else.
type CreateOrderRequest struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Currency  string  `json:"currency" binding:"omitempty,len=3"`
	Receipt   string  `json:"receipt" binding:"omitempty,max=40"`
	OwnerID   string  `json:"owner_id" binding:"omitempty,max=100"`
	OwnerType string  `json:"owner_type" binding:"omitempty,oneof=employer worker"`
}

// CreateOrderResponse is the response body for a created order.
type CreateOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"` // minor units, as registered with the gateway
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	KeyID    string `json:"key_id"` // public key id for the checkout widget
}

// VerifyPaymentRequest asks the gateway for the current state of a payment.
type VerifyPaymentRequest struct {
	PaymentID string `json:"payment_id" binding:"required,max=64"`
}

// CapturePaymentRequest captures an authorized payment. Amount is in major
// units, mirroring CreateOrderRequest.
type CapturePaymentRequest struct {
	PaymentID string  `json:"payment_id" binding:"required,max=64"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Currency  string  `json:"currency" binding:"omitempty,len=3"`
}

// WalletMutationRequest is the admin request body for manual credits and
// debits. Amount is in minor units: internal callers already speak the
// ledger's native unit.
type WalletMutationRequest struct {
	OwnerID        string          `json:"owner_id" binding:"required,max=100"`
	OwnerType      string          `json:"owner_type" binding:"required,oneof=employer worker"`
	Amount         int64           `json:"amount" binding:"required,gt=0"`
	Currency       string          `json:"currency" binding:"omitempty,len=3"`
	Reason         string          `json:"reason" binding:"required,max=100"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty" binding:"omitempty,max=128"`
	Meta           json.RawMessage `json:"meta,omitempty"`
}

// WalletResponse is the wire form of a wallet. Balance carries both the
// ledger's minor units and a display-friendly major-unit value.
type WalletResponse struct {
	ID           string  `json:"id"`
	OwnerID      string  `json:"owner_id"`
	OwnerType    string  `json:"owner_type"`
	Balance      int64   `json:"balance"`
	BalanceMajor float64 `json:"balance_major"`
	Currency     string  `json:"currency"`
	UpdatedAt    string  `json:"updated_at"`
}

// TransactionResponse is the wire form of one ledger entry.
type TransactionResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	Reason    string          `json:"reason"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// WalletStatementResponse is the response for the wallet overview endpoint.
// Wallet is null when the owner has never been credited.
type WalletStatementResponse struct {
	Wallet       *WalletResponse       `json:"wallet"`
	Transactions []TransactionResponse `json:"transactions"`
}

// MutationResponse is returned from manual credit/debit calls.
type MutationResponse struct {
	Wallet      WalletResponse      `json:"wallet"`
	Transaction TransactionResponse `json:"transaction"`
}

// FromWallet converts a domain wallet to its wire form.
func FromWallet(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:           w.ID.String(),
		OwnerID:      w.OwnerID,
		OwnerType:    string(w.OwnerType),
		Balance:      w.Balance,
		BalanceMajor: domain.ToMajorUnits(w.Balance),
		Currency:     w.Currency,
		UpdatedAt:    w.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// FromTransaction converts a domain transaction to its wire form.
func FromTransaction(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        t.ID.String(),
		Type:      string(t.Type),
		Amount:    t.Amount,
		Currency:  t.Currency,
		Reason:    t.Reason,
		Meta:      t.Meta,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// FromTransactions converts a slice, always returning a non-nil slice so the
// JSON field is [] rather than null.
func FromTransactions(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, FromTransaction(&txns[i]))
	}
	return out
}
