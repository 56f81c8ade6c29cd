package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New("PAY_001", "Amount must be positive", http.StatusBadRequest)
	assert.Equal(t, "[PAY_001] Amount must be positive", e.Error())
}

func TestAppError_ErrorWithWrapped(t *testing.T) {
	inner := errors.New("connection refused")
	e := Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, inner)
	assert.Contains(t, e.Error(), "SYS_001")
	assert.Contains(t, e.Error(), "connection refused")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	e := InternalError(fmt.Errorf("query failed: %w", inner))
	assert.True(t, errors.Is(e, inner))
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"invalid signature", ErrInvalidSignature(), "PAY_WH_001", http.StatusBadRequest},
		{"validation", Validation("amount is required"), "PAY_000", http.StatusBadRequest},
		{"unparsable payload", ErrUnparsablePayload(), "PAY_WH_002", http.StatusBadRequest},
		{"invalid amount", ErrInvalidAmount(), "PAY_001", http.StatusBadRequest},
		{"insufficient balance", ErrInsufficientBalance(), "PAY_002", http.StatusPaymentRequired},
		{"duplicate transaction", ErrDuplicateTransaction(nil), "PAY_003", http.StatusConflict},
		{"not found", ErrNotFound("wallet"), "PAY_004", http.StatusNotFound},
		{"gateway", ErrGateway(errors.New("timeout")), "GW_001", http.StatusBadGateway},
		{"invalid token", ErrInvalidToken(), "AUTH_001", http.StatusUnauthorized},
		{"invalid admin key", ErrInvalidAdminKey(), "AUTH_002", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
		})
	}
}

func TestErrNotFound_EntityInMessage(t *testing.T) {
	e := ErrNotFound("wallet")
	assert.Equal(t, "wallet not found", e.Message)
}
