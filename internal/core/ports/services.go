package ports

import (
	"context"
	"encoding/json"
	"time"

	"marketplace-payments/internal/core/domain"
)

// SignatureService handles HMAC-SHA256 signing and verification of raw
// webhook bodies.
type SignatureService interface {
	Sign(secretKey string, payload []byte) string
	Verify(secretKey string, payload []byte, signature string) bool
}

// TokenService handles JWT bearer tokens for wallet-owner endpoints.
type TokenService interface {
	Generate(ownerID string, ownerType domain.OwnerType) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	OwnerID   string
	OwnerType domain.OwnerType
}

// MutationRequest describes one wallet credit or debit.
type MutationRequest struct {
	OwnerID        string
	OwnerType      domain.OwnerType
	Amount         int64 // minor units
	Currency       string
	Reason         string
	IdempotencyKey *string
	Meta           json.RawMessage
}

// WalletService owns all balance mutations. Credit creates the wallet lazily;
// Debit fails on a missing wallet. Both apply the balance write and the
// ledger insert as a single database transaction.
type WalletService interface {
	Credit(ctx context.Context, req MutationRequest) (*domain.Wallet, *domain.Transaction, error)
	Debit(ctx context.Context, req MutationRequest) (*domain.Wallet, *domain.Transaction, error)
	// Statement returns the wallet and its most recent transactions.
	Statement(ctx context.Context, ownerID string, limit int) (*domain.Wallet, []domain.Transaction, error)
}

// EventQueue decouples the webhook HTTP handler from event processing: the
// handler publishes and returns, a worker consumes. Enqueue reports false
// when the queue is full or shut down; the event is then dropped and the
// loss is observable only through logs.
type EventQueue interface {
	Enqueue(ev *domain.WebhookEvent) bool
}

// EventProcessor applies at most one ledger credit per verified payment event.
type EventProcessor interface {
	Process(ctx context.Context, ev *domain.WebhookEvent) error
}

// ProcessedEventCache is a best-effort fast path for duplicate webhook
// suppression. The unique idempotency key in the ledger stays authoritative.
type ProcessedEventCache interface {
	Seen(ctx context.Context, paymentID string) (bool, error)
	MarkSeen(ctx context.Context, paymentID string, ttl time.Duration) error
}

// OrderRequest describes a gateway order to create. Amount is in minor units;
// the owner fields travel as opaque notes so the later webhook can recover
// the target account.
type OrderRequest struct {
	Amount    int64
	Currency  string
	Receipt   string
	OwnerID   string
	OwnerType domain.OwnerType
}

// GatewayOrder is the processor's view of a created order.
type GatewayOrder struct {
	ID       string          `json:"id"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
	Status   string          `json:"status"`
	Raw      json.RawMessage `json:"-"`
}

// GatewayClient is a stateless wrapper around the payment processor's REST
// API. Fetch and Capture return the processor response verbatim.
type GatewayClient interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (json.RawMessage, error)
	CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) (json.RawMessage, error)
}
