package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConstraint indicates that an operation would violate a relational
// constraint (e.g. deleting an account that still owns journal lines, or
// confirming a match against an already-consumed atomic transaction).
var ErrConstraint = errors.New("constraint violation")

// ErrIntegrity indicates a violated ledger invariant. It is never corrected
// automatically; posting for the affected user is halted until resolved.
var ErrIntegrity = errors.New("ledger integrity fault")

// AppError wraps a lower-level error with an application error code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// BalanceViolationError reports that the debit and credit lines of a journal
// do not net to zero for one currency. Delta is signed: positive means the
// debit side is heavier.
type BalanceViolationError struct {
	CurrencyCode string
	Delta        decimal.Decimal
}

func (e *BalanceViolationError) Error() string {
	return fmt.Sprintf("journal does not balance: %s off by %s", e.CurrencyCode, e.Delta.StringFixed(2))
}

func (e *BalanceViolationError) Is(target error) bool {
	return target == ErrValidation
}

// IntegrityError reports that the accounting equation does not hold for a
// user's posted ledger in one currency. Residual is assets + expenses minus
// liabilities, equity and revenue, which must be exactly zero.
type IntegrityError struct {
	UserID       string
	CurrencyCode string
	Residual     decimal.Decimal
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("accounting equation violated for user %s in %s: residual %s",
		e.UserID, e.CurrencyCode, e.Residual.StringFixed(2))
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// ConstraintViolationError carries detail about which operation hit which
// relational constraint. No partial mutation occurs when it is returned.
type ConstraintViolationError struct {
	Op     string
	Detail string
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

func (e *ConstraintViolationError) Is(target error) bool {
	return target == ErrConstraint
}

// InsufficientDataError indicates a statistical calculation was requested
// over fewer data points than it needs. Not retried.
type InsufficientDataError struct {
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data points: need %d, got %d", e.Need, e.Got)
}
