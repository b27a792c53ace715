package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("dates", "required"), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("load: %w", NotFound("availability_period", "x")), http.StatusNotFound},
		{"forbidden", Forbidden("shop_resource", "y"), http.StatusForbidden},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"transaction", &TransactionError{Op: "ingest", Err: errors.New("boom")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestValidationError_OrNil(t *testing.T) {
	v := &ValidationError{}
	assert.NoError(t, v.OrNil())

	v.Add("quantity", "must be a non-negative integer")
	v.Add("dates", "at least one date is required")
	assert.EqualError(t, v.OrNil(), "validation failed: dates: at least one date is required; quantity: must be a non-negative integer")
}
