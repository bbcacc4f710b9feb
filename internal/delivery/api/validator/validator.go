// Package validator plugs go-playground/validator into echo's request binding.
package validator

import (
	"reflect"
	"strings"

	"simpletrader/internal/errors"

	"github.com/go-playground/validator/v10"
)

// BcryptMaxBytes is the longest password bcrypt accepts, counted in bytes.
const BcryptMaxBytes = 72

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New returns a validator that reports fields by their JSON names.
func New() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})
	// bcryptmax limits bytes, not runes, so multi-byte passwords cannot exceed bcrypt's input limit.
	_ = v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= BcryptMaxBytes
	})

	return &CustomValidator{validate: v}
}

// Validate checks the struct tags of i.
func (cv *CustomValidator) Validate(i any) error {
	return cv.validate.Struct(i)
}

// FieldErrors flattens validation failures into field -> failed rule.
// It returns nil when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		rule := fieldErr.Tag()
		if fieldErr.Param() != "" {
			rule += "=" + fieldErr.Param()
		}
		fields[fieldErr.Field()] = rule
	}

	return fields
}
