// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// ErrorKind is a stable, machine-readable failure code. Handlers map
// kinds to HTTP statuses and callers branch on them instead of
// matching message strings.
type ErrorKind string

const (
	ErrAuthenticationRequired   ErrorKind = "AUTHENTICATION_REQUIRED"
	ErrRoleDenied               ErrorKind = "ROLE_DENIED"
	ErrResourceOwnerMismatch    ErrorKind = "RESOURCE_OWNER_MISMATCH"
	ErrNotFound                 ErrorKind = "NOT_FOUND"
	ErrInvalidOffer             ErrorKind = "INVALID_OFFER"
	ErrAlreadyDecided           ErrorKind = "ALREADY_DECIDED"
	ErrRequestExpired           ErrorKind = "REQUEST_EXPIRED"
	ErrInsufficientAvailability ErrorKind = "INSUFFICIENT_AVAILABILITY"
	ErrInsufficientShareBalance ErrorKind = "INSUFFICIENT_SHARE_BALANCE"
	ErrPaymentNotReceived       ErrorKind = "PAYMENT_NOT_RECEIVED"
	ErrSettlementInProgress     ErrorKind = "SETTLEMENT_IN_PROGRESS"
	ErrValidation               ErrorKind = "VALIDATION_ERROR"
)

// AppError is a recoverable operation failure. EntityID names the
// offending record where one exists.
type AppError struct {
	Kind     ErrorKind
	EntityID string
	Message  string
}

func (e *AppError) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.EntityID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewAppError(kind ErrorKind, entityID, format string, args ...interface{}) *AppError {
	return &AppError{
		Kind:     kind,
		EntityID: entityID,
		Message:  fmt.Sprintf(format, args...),
	}
}

// KindOf extracts the error kind, or empty string for non-AppErrors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// AsAppError unwraps err into an *AppError if it carries one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
