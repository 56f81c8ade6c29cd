package domain

import (
	"time"

	"github.com/google/uuid"
)

// OwnerType describes which kind of marketplace account owns a wallet.
// It is descriptive only: wallet uniqueness is keyed on OwnerID alone,
// matching the upstream account model where employer and worker ids never
// collide.
type OwnerType string

const (
	OwnerTypeEmployer OwnerType = "employer"
	OwnerTypeWorker   OwnerType = "worker"
)

// ParseOwnerType maps a raw string onto a known owner type, defaulting to
// employer. Webhook notes are attacker-adjacent input, so an unknown value
// must not produce an unknown owner type in the ledger.
func ParseOwnerType(s string) OwnerType {
	if s == string(OwnerTypeWorker) {
		return OwnerTypeWorker
	}
	return OwnerTypeEmployer
}

// Wallet holds an account's balance in minor currency units. It is created
// lazily on first credit and mutated only through the wallet service.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   string    `json:"owner_id"`
	OwnerType OwnerType `json:"owner_type"`
	Balance   int64     `json:"balance"` // minor units, never negative
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
