package models

import (
	"errors"
	"fmt"
)

// Error kinds. Every error surfaced to callers wraps exactly one of these.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation error")
	ErrThrottled        = errors.New("too many attempts")
)

// Error carries a human-readable message naming the violated rule.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) error {
	return newError(ErrUnauthorized, format, args...)
}

func PermissionDenied(format string, args ...any) error {
	return newError(ErrPermissionDenied, format, args...)
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func Validation(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

// ErrMenuItemNotFound is returned when a menu item is not found.
var ErrMenuItemNotFound = NotFound("menu item not found")

var (
	ErrCategoryNotFound = NotFound("category not found")
	ErrOrderNotFound    = NotFound("order not found")
	ErrUserNotFound     = NotFound("user not found")
	ErrCartLineNotFound = NotFound("cart item not found")
)
