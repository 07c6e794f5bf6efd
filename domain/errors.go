package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeViolation    ErrorCode = "RULE_VIOLATION"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches domain errors by code and message so the violation
// constructors below compose with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrMemberNotFound = NewError(ErrCodeNotFound, "member not found")
	ErrBookNotFound   = NewError(ErrCodeNotFound, "book not found")
	ErrLoanNotFound   = NewError(ErrCodeNotFound, "loan not found")

	ErrEmailTaken         = NewError(ErrCodeConflict, "a member with this email already exists")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "invalid email or password")

	ErrLoanAlreadyReturned = NewError(ErrCodeViolation, "this loan has already been returned")
	ErrHasOverdueLoan      = NewError(ErrCodeViolation, "you have overdue loans, return them before borrowing more books")

	ErrBookOutOfStock    = NewError(ErrCodeConflict, "no copies left to reserve")
	ErrTransientConflict = NewError(ErrCodeUnavailable, "storage conflict, retry the request")

	ErrAccessDenied   = NewError(ErrCodeForbidden, "you are not authorized to view this loan")
	ErrUnauthorized   = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload = NewError(ErrCodeInvalid, "invalid payload")
)

// MaxLoansExceeded builds the loan-ceiling violation carrying the configured limit.
func MaxLoansExceeded(limit int) *Error {
	return NewError(ErrCodeViolation,
		fmt.Sprintf("you have reached the maximum number of active loans (%d), return a book before borrowing another", limit))
}

// NoCopiesAvailable builds the stock-exhaustion violation for the given title.
func NoCopiesAvailable(title string) *Error {
	return NewError(ErrCodeViolation,
		fmt.Sprintf("the book %q has no available copies at this time", title))
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
