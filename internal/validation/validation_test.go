package validation

import (
	"testing"

	"freight-backend/internal/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string `json:"name" validate:"required,min=2,max=100"`
	Email  string `json:"email" validate:"omitempty,email"`
	Gstin  string `json:"gstin" validate:"omitempty,gstin"`
	Mobile string `json:"mobile" validate:"omitempty,mobile"`
}

func TestIsGSTIN(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"27ABCDE1234F1Z5", true},
		{"29AAACB1234C1ZK", true},
		{"27abcde1234f1z5", false},
		{"27ABCDE1234F0Z5", false},
		{"27ABCDE1234F1Y5", false},
		{"27ABCDE1234F1Z", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGSTIN(tt.in))
		})
	}
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		field   string
		message string
	}{
		{"valid", sample{Name: "Ramesh", Gstin: "27ABCDE1234F1Z5", Mobile: "9876543210"}, "", ""},
		{"optional fields blank", sample{Name: "Ramesh"}, "", ""},
		{"missing name", sample{}, "name", "name is required"},
		{"short name", sample{Name: "R"}, "name", "name must be at least 2 characters"},
		{"bad email", sample{Name: "Ramesh", Email: "nope"}, "email", "Invalid email format"},
		{"bad gstin", sample{Name: "Ramesh", Gstin: "27ABCDE"}, "gstin", "Invalid GSTIN format"},
		{"short mobile", sample{Name: "Ramesh", Mobile: "98765"}, "mobile", "Mobile number must be exactly 10 digits"},
		{"letters in mobile", sample{Name: "Ramesh", Mobile: "98765abcde"}, "mobile", "Mobile number must be exactly 10 digits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Field)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

type line struct {
	Weight   *decimal.Decimal `json:"weight" validate:"required,nonneg,maxdecimals=4,maxintdigits=14"`
	CgstSgst *decimal.Decimal `json:"cgstSgst" validate:"omitempty,nonneg,maxdecimals=4,maxintdigits=14"`
}

func amountPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestDecimalRules(t *testing.T) {
	tests := []struct {
		name    string
		in      line
		field   string
		message string
	}{
		{"valid", line{Weight: amountPtr("12.3456"), CgstSgst: amountPtr("0")}, "", ""},
		{"zero weight", line{Weight: amountPtr("0")}, "", ""},
		{"trailing zeros", line{Weight: amountPtr("1.500000")}, "", ""},
		{"largest integer part", line{Weight: amountPtr("99999999999999.9999")}, "", ""},
		{"missing weight", line{}, "weight", "weight is required"},
		{"negative weight", line{Weight: amountPtr("-1")}, "weight", "weight cannot be negative"},
		{"five decimals", line{Weight: amountPtr("0.12345")}, "weight", "weight must have at most 4 decimal places"},
		{"fifteen digits", line{Weight: amountPtr("100000000000000")}, "weight", "weight must have at most 14 digits before the decimal point"},
		{"negative tax", line{Weight: amountPtr("1"), CgstSgst: amountPtr("-0.5")}, "cgstSgst", "cgstSgst cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}
