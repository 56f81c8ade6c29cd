package dto

import (
	"testing"
	"time"

	"marketplace-payments/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFromWallet(t *testing.T) {
	w := &domain.Wallet{
		ID:        uuid.New(),
		OwnerID:   "emp-1",
		OwnerType: domain.OwnerTypeEmployer,
		Balance:   150050,
		Currency:  "INR",
		UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	out := FromWallet(w)
	assert.Equal(t, w.ID.String(), out.ID)
	assert.Equal(t, int64(150050), out.Balance)
	assert.Equal(t, 1500.50, out.BalanceMajor)
	assert.Equal(t, "2026-03-01T12:00:00Z", out.UpdatedAt)
}

func TestFromTransactions_EmptyIsNotNull(t *testing.T) {
	out := FromTransactions(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
