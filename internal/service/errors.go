package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindValidation        ErrorKind = "VALIDATION"
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	KindConflict          ErrorKind = "CONFLICT"
	KindUnauthorized      ErrorKind = "UNAUTHORIZED"
	KindUnexpected        ErrorKind = "UNEXPECTED"
)

// AppError is the tagged error every service returns.
type AppError struct {
	Kind     ErrorKind
	Message  string
	Messages []string // extra validation detail, optional
	Err      error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Kind == KindUnexpected {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NotFound(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: msg}
}

func Unexpected(msg string, err error) *AppError {
	return &AppError{Kind: KindUnexpected, Message: msg, Err: err}
}

// InsufficientStockError tells the caller how much is left so it can say "only 3 left".
type InsufficientStockError struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Available   decimal.Decimal `json:"available"`
	Requested   decimal.Decimal `json:"requested"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for '%s': available %s, requested %s",
		e.ProductName, e.Available.String(), e.Requested.String())
}

// KindOf classifies any error; unknown errors are unexpected.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return KindInsufficientStock
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// storageError maps gorm errors onto the taxonomy.
func storageError(err error, entity string, id interface{}) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("%s '%v' not found", entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &AppError{Kind: KindConflict, Message: fmt.Sprintf("%s already exists", entity), Err: err}
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return &AppError{Kind: KindValidation, Message: fmt.Sprintf("%s violates a constraint", entity), Err: err}
	}
	var appErr *AppError
	var stockErr *InsufficientStockError
	if errors.As(err, &appErr) || errors.As(err, &stockErr) {
		return err
	}
	return Unexpected("storage failure", err)
}
