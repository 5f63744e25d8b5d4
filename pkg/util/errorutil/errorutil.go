package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes surfaced to API callers.
const (
	CodeValidation        = "VALIDATION_FAILED"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeAlreadyPaid       = "ALREADY_PAID"
	CodeUnpaidBalance     = "UNPAID_BALANCE"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeAuditWriteFailed  = "AUDIT_WRITE_FAILED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInternal          = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewInvalidAmount reports a non-positive payment amount.
func NewInvalidAmount(attempted int64) error {
	return NewDomainError(CodeInvalidAmount, "payment amount must be greater than zero",
		http.StatusUnprocessableEntity, map[string]any{"attempted": attempted})
}

// NewAlreadyPaid reports a payment attempt against a settled job.
func NewAlreadyPaid(amountDue, amountPaid int64) error {
	return NewDomainError(CodeAlreadyPaid, "job is already fully paid",
		http.StatusConflict, map[string]any{"amount_due": amountDue, "amount_paid": amountPaid})
}

// NewUnpaidBalance blocks pickup while money is owed. remaining is in cents.
func NewUnpaidBalance(remaining int64) error {
	return NewDomainError(CodeUnpaidBalance,
		fmt.Sprintf("cannot complete pickup: balance of %s is still due", FormatCents(remaining)),
		http.StatusConflict, map[string]any{"remaining": remaining})
}

func NewInvalidTransition(from, to string) error {
	return NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("cannot move job from %s to %s", from, to),
		http.StatusConflict, map[string]any{"from": from, "to": to})
}

// NewAuditWriteFailure wraps a failed best-effort audit insert. It is reported as a warning, never returned as the
// operation error.
func NewAuditWriteFailure(eventType string, err error) *DomainError {
	return &DomainError{
		Code:       CodeAuditWriteFailed,
		Message:    fmt.Sprintf("audit event %q was not recorded", eventType),
		HTTPStatus: http.StatusOK,
		Details:    map[string]any{"event_type": eventType},
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewRateLimited(message string) error {
	return NewDomainError(CodeRateLimited, message, http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// RemainingBalance extracts the outstanding cents from an UNPAID_BALANCE error.
func RemainingBalance(err error) (int64, bool) {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != CodeUnpaidBalance {
		return 0, false
	}
	remaining, ok := domainErr.Details["remaining"].(int64)
	return remaining, ok
}

// FormatCents renders cents as a dollar amount, e.g. 1500 -> "$15.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
