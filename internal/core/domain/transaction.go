package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the direction of a ledger mutation.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// Transaction is an immutable ledger entry. Rows are inserted in the same
// database transaction as the balance update and never modified afterwards,
// so for every wallet the sum of credits minus debits equals the balance.
type Transaction struct {
	ID             uuid.UUID       `json:"id"`
	WalletID       uuid.UUID       `json:"wallet_id"`
	OwnerID        string          `json:"owner_id"`
	OwnerType      OwnerType       `json:"owner_type"`
	Type           TransactionType `json:"type"`
	Amount         int64           `json:"amount"` // minor units, always positive
	Currency       string          `json:"currency"`
	Reason         string          `json:"reason"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty"` // unique when set
	Meta           json.RawMessage `json:"meta,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// GatewayIdempotencyKey derives the idempotency key for a webhook-sourced
// credit from the processor-assigned payment id.
func GatewayIdempotencyKey(paymentID string) string {
	return "razorpay:" + paymentID
}
