package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DomainError standardizes application errors. Detail is the message
// rendered to the client inside the standard error envelope.
type DomainError struct {
	Code       string
	Detail     string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, detail string, status int) *DomainError {
	return &DomainError{Code: code, Detail: detail, HTTPStatus: status}
}

// NewBadRequest flags a violated business rule.
func NewBadRequest(detail string) error {
	return NewDomainError("BAD_REQUEST", detail, http.StatusBadRequest)
}

// NewValidationError flags a malformed request payload.
func NewValidationError(detail string) error {
	return NewDomainError("VALIDATION_FAILED", detail, http.StatusUnprocessableEntity)
}

func NewNotFound(resource string) error {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewUnauthorized(detail string) error {
	return NewDomainError("UNAUTHORIZED", detail, http.StatusUnauthorized)
}

func NewForbidden(detail string) error {
	return NewDomainError("FORBIDDEN", detail, http.StatusForbidden)
}

func NewConflict(detail string) error {
	return NewDomainError("CONFLICT", detail, http.StatusConflict)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Detail:     "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Missing rows map
// to 404 and unique-constraint violations to 409 so repositories can
// return storage errors as-is.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &DomainError{
			Code:       "NOT_FOUND",
			Detail:     "Not found or data is not correct",
			HTTPStatus: http.StatusNotFound,
			Err:        err,
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &DomainError{
			Code:       "CONFLICT",
			Detail:     fmt.Sprintf("Already exist: %s", pgErr.Message),
			HTTPStatus: http.StatusConflict,
			Err:        err,
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Detail:     "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
