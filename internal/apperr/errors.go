package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ValidationError carries field-level messages for the admin UI.
type ValidationError struct {
	Fields map[string]string
}

func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

// OrNil returns nil when no field failed, so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type NotFoundError struct {
	Resource string
	ID       string
}

func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ForbiddenError means the record exists but belongs to another shop.
type ForbiddenError struct {
	Resource string
	ID       string
}

func Forbidden(resource, id string) *ForbiddenError {
	return &ForbiddenError{Resource: resource, ID: id}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s %s does not belong to this shop", e.Resource, e.ID)
}

// TransactionError wraps any failure inside a transactional block.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransactionError) Unwrap() error { return e.Err }

// CollaboratorCallError wraps a failed outbound call (Shopify, mail, search).
type CollaboratorCallError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorCallError) Error() string {
	return e.Collaborator + " call failed: " + e.Err.Error()
}
func (e *CollaboratorCallError) Unwrap() error { return e.Err }

var ErrUnauthenticated = errors.New("missing shop context")

func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		forbidden  *ForbiddenError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
