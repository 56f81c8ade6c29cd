package service

import (
	"testing"
	"time"

	"marketplace-payments/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService("test-secret", time.Hour, "marketplace-payments")

	token, expiresAt, err := svc.Generate("emp_42", domain.OwnerTypeEmployer)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "emp_42", claims.OwnerID)
	assert.Equal(t, domain.OwnerTypeEmployer, claims.OwnerType)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTTokenService("secret-a", time.Hour, "marketplace-payments")
	verifier := NewJWTTokenService("secret-b", time.Hour, "marketplace-payments")

	token, _, err := issuer.Generate("wrk_1", domain.OwnerTypeWorker)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	svc := NewJWTTokenService("test-secret", -time.Minute, "marketplace-payments")

	token, _, err := svc.Generate("emp_1", domain.OwnerTypeEmployer)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc := NewJWTTokenService("test-secret", time.Hour, "marketplace-payments")
	_, err := svc.Validate("not.a.jwt")
	assert.Error(t, err)
}
