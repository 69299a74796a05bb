// Package validation wraps go-playground/validator with the rules used by the
// request payloads: GSTIN, 10 digit mobile numbers and decimal amounts.
//
// decimal.Decimal fields are validated through their string form, so the
// amount rules below apply to them directly:
//
//	nonneg           not below zero
//	maxdecimals=N    at most N digits after the decimal point
//	maxintdigits=N   at most N digits before it
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"freight-backend/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	gstinPattern  = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names, the ones the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
		return IsGSTIN(fl.Field().String())
	})
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("nonneg", func(fl validator.FieldLevel) bool {
		d, ok := amount(fl)
		return ok && !d.IsNegative()
	})
	_ = v.RegisterValidation("maxdecimals", func(fl validator.FieldLevel) bool {
		d, ok := amount(fl)
		places, err := strconv.Atoi(fl.Param())
		return ok && err == nil && d.Equal(d.Round(int32(places)))
	})
	_ = v.RegisterValidation("maxintdigits", func(fl validator.FieldLevel) bool {
		d, ok := amount(fl)
		digits, err := strconv.Atoi(fl.Param())
		return ok && err == nil && d.Abs().LessThan(decimal.New(1, int32(digits)))
	})
	return v
}

func amount(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(fl.Field().String())
	return d, err == nil
}

// IsGSTIN expects an already uppercased value.
func IsGSTIN(s string) bool {
	return gstinPattern.MatchString(s)
}

// Struct validates s and returns the first failure as an apperr validation error.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Internal("Error validating request", err)
	}
	fe := fieldErrs[0]
	return apperr.Validation(fe.Field(), message(fe))
}

func message(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return field + " must be at least " + e.Param() + " characters"
		}
		return field + " must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return field + " must be at most " + e.Param() + " characters"
		}
		return field + " must be at most " + e.Param()
	case "gstin":
		return "Invalid GSTIN format"
	case "mobile":
		return "Mobile number must be exactly 10 digits"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "nonneg":
		return field + " cannot be negative"
	case "maxdecimals":
		return field + " must have at most " + e.Param() + " decimal places"
	case "maxintdigits":
		return field + " must have at most " + e.Param() + " digits before the decimal point"
	case "uuid":
		return "Invalid " + field
	default:
		return "Invalid " + field
	}
}
