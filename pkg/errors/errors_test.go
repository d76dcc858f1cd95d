package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code   string
		status int
	}{
		{"InvalidRequest", http.StatusBadRequest},
		{"ValidationError", http.StatusBadRequest},
		{"Unauthorized", http.StatusUnauthorized},
		{"PermissionDenied", http.StatusForbidden},
		{"NotFound", http.StatusNotFound},
		{"Conflict", http.StatusConflict},
		{"StoreFailure", http.StatusInternalServerError},
		{"InternalError", http.StatusInternalServerError},
		{"SomethingElse", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		err := NewStandardError(tc.code, "message", "details")
		assert.Equal(t, tc.status, err.HTTPStatus(), "code %s", tc.code)
	}
}

func TestNewInsufficientStock(t *testing.T) {
	err := NewInsufficientStock(5, 8)

	assert.Equal(t, "ValidationError", err.Code)
	assert.Equal(t, "not enough stock. Available: 5, Requested: 8", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("item", "abc-123")

	assert.Equal(t, "item not found", err.Message)
	assert.Equal(t, "ID: abc-123", err.Details)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus())
}

func TestErrorInterface(t *testing.T) {
	var err error = NewConflict("barcode already exists", "Barcode: x")
	assert.Equal(t, "barcode already exists", err.Error())
}
