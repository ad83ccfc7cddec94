package services

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnavailable  Kind = "unavailable"
)

type ServiceError struct {
	Kind    Kind
	Status  int
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

// Is matches any ServiceError of the same kind, so callers can test
// errors.Is(err, services.NotFound) without caring about the message.
func (e ServiceError) Is(target error) bool {
	var other ServiceError
	if !errors.As(target, &other) {
		return false
	}
	return other.Message == "" && other.Kind == e.Kind
}

var (
	Unauthorized = ServiceError{Kind: KindUnauthorized}
	Forbidden    = ServiceError{Kind: KindForbidden}
	Validation   = ServiceError{Kind: KindValidation}
	NotFound     = ServiceError{Kind: KindNotFound}
	Conflict     = ServiceError{Kind: KindConflict}
	Unavailable  = ServiceError{Kind: KindUnavailable}
)

func ErrNotFound(msg string) error {
	return ServiceError{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

func ErrBadRequest(msg string) error {
	return ServiceError{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

func ErrForbidden(msg string) error {
	return ServiceError{Kind: KindForbidden, Status: http.StatusForbidden, Message: msg}
}

func ErrUnauthorized(msg string) error {
	return ServiceError{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: msg}
}

// ErrConflict reports a state clash such as a second answer to the same cell.
// Clients see it as a bad request.
func ErrConflict(msg string) error {
	return ServiceError{Kind: KindConflict, Status: http.StatusBadRequest, Message: msg}
}

func ErrUnavailable(msg string) error {
	return ServiceError{Kind: KindUnavailable, Status: http.StatusServiceUnavailable, Message: msg}
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
