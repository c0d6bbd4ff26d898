package apperror

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error into one of the stable workflow error families.
// The string code for each kind is part of the API contract and must not
// change between versions.
type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindPreconditionFailed
	KindNotAuthorized
	KindNotFound
	KindStorageUnavailable
)

var kindCodes = map[Kind]string{
	KindValidation:         "validation_error",
	KindConflict:           "conflict",
	KindPreconditionFailed: "precondition_failed",
	KindNotAuthorized:      "not_authorized",
	KindNotFound:           "not_found",
	KindStorageUnavailable: "storage_unavailable",
}

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Code returns the stable wire code for this error.
func (e *AppError) Code() string {
	return kindCodes[e.Kind]
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(message string) *AppError {
	return New(KindValidation, message)
}

func Conflict(message string) *AppError {
	return New(KindConflict, message)
}

func PreconditionFailed(message string) *AppError {
	return New(KindPreconditionFailed, message)
}

func NotAuthorized(message string) *AppError {
	return New(KindNotAuthorized, message)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message)
}

func StorageUnavailable(err error) *AppError {
	return &AppError{Kind: KindStorageUnavailable, Message: "backing store unavailable", Err: err}
}

// IsKind reports whether err (or anything it wraps) is an AppError of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// FromStorage normalizes errors coming back from a repository call. Domain
// errors pass through untouched; context expiry and driver failures surface
// as storage_unavailable so callers know the write may or may not have
// committed.
func FromStorage(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return StorageUnavailable(err)
	}
	return StorageUnavailable(err)
}

// HTTPStatus maps an error kind to the transport status the API layer
// should answer with.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return 500
	}
	switch appErr.Kind {
	case KindValidation:
		return 400
	case KindConflict:
		return 409
	case KindPreconditionFailed:
		return 412
	case KindNotAuthorized:
		return 403
	case KindNotFound:
		return 404
	case KindStorageUnavailable:
		return 503
	default:
		return 500
	}
}

// CodeOf returns the stable code for err, or "internal_error" for anything
// outside the taxonomy.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return "internal_error"
}
