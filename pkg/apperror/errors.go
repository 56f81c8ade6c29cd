package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Webhook intake (PAY_WH) ----

func ErrInvalidSignature() *AppError {
	return New("PAY_WH_001", "Invalid webhook signature", http.StatusBadRequest)
}

func ErrUnparsablePayload() *AppError {
	return New("PAY_WH_002", "Unparsable webhook payload", http.StatusBadRequest)
}

// ---- Ledger business logic (PAY) ----

func ErrInvalidAmount() *AppError {
	return New("PAY_001", "Amount must be positive", http.StatusBadRequest)
}

func ErrInsufficientBalance() *AppError {
	return New("PAY_002", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrDuplicateTransaction(err error) *AppError {
	return Wrap("PAY_003", "Transaction already recorded for this idempotency key", http.StatusConflict, err)
}

func ErrNotFound(entity string) *AppError {
	return New("PAY_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Payment gateway (GW) ----

func ErrGateway(err error) *AppError {
	return Wrap("GW_001", "Payment gateway request failed", http.StatusBadGateway, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrInvalidAdminKey() *AppError {
	return New("AUTH_002", "Invalid admin key", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-validation error.
func Validation(message string) *AppError {
	return New("PAY_000", message, http.StatusBadRequest)
}
