package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindUnauthorized, http.StatusUnauthorized},
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Status())
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("Customer")
	assert.Equal(t, "Customer not found", err.Error())
	assert.Equal(t, KindNotFound, err.Kind)
}

func TestInternalWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("Error creating invoice", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Error creating invoice: connection refused", err.Error())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("save: %w", Conflict("invoiceId", "Invoice ID already exists"))

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindConflict))
	assert.False(t, Is(wrapped, KindNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}
