// Package domainerrors defines the coded error taxonomy for the certificate
// ledger. Services return these directly; stores return pkg/platform/sentinel
// errors and services translate. Transport layers map codes to HTTP statuses
// via ToHTTPStatus.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error classification.
type Code string

const (
	// CodeNotFound: content hash has no slot mapping.
	CodeNotFound Code = "not_found"
	// CodeTokenNotExists: the hash index knows a slot but the record store
	// does not. Structural double-check on lookup paths.
	CodeTokenNotExists Code = "token_not_exists"
	// CodeAlreadyExists: duplicate content hash on issuance.
	CodeAlreadyExists   Code = "already_exists"
	CodeAlreadyRedeemed Code = "already_redeemed"
	CodeExpired         Code = "expired"
	// CodeStillActive: redemption attempted under the expired-first policy
	// while the record is still active. Reserved for that policy; the
	// redeem-while-active policy in this repo never returns it.
	CodeStillActive             Code = "still_active"
	CodeCategoryNotApproved     Code = "category_not_approved"
	CodeCategoryAlreadyApproved Code = "category_already_approved"
	// CodeInvalidDate: zero, past, or non-increasing deadline.
	CodeInvalidDate Code = "invalid_date"
	// CodeUnauthorized: missing role or failed signature verification.
	CodeUnauthorized Code = "unauthorized"
	// CodeInvalidNonce: relay nonce replay or gap.
	CodeInvalidNonce Code = "invalid_nonce"
	// CodeTransferAttempted: records never change hands.
	CodeTransferAttempted Code = "transfer_attempted"
	CodeInvalidInput      Code = "invalid_input"
	CodeInternal          Code = "internal"
)

// Error carries a code plus a human-readable message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the code from err, unwrapping as needed. Uncoded errors
// report CodeInternal so callers can always map to a response.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// ToHTTPStatus maps a code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound, CodeTokenNotExists:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeAlreadyRedeemed, CodeExpired, CodeStillActive,
		CodeCategoryAlreadyApproved, CodeInvalidNonce:
		return http.StatusConflict
	case CodeCategoryNotApproved, CodeInvalidDate, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeTransferAttempted:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
