package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(field.Name)
		}
		return name
	})
	return validate
}

// ValidateInput checks the validate tags of value and reports every failing
// field in one invalid-operation error.
func ValidateInput(value any) error {
	err := inputValidator.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("validate input: %w", err)
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		messages = append(messages, describeFieldError(fieldError))
	}
	return invalidOperation(strings.Join(messages, "; "))
}

func describeFieldError(fieldError validator.FieldError) string {
	field := fieldError.Field()
	switch fieldError.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fieldError.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s character(s)", field, fieldError.Param())
	case "alpha":
		return field + " must contain letters only"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fieldError.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fieldError.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fieldError.Tag())
	}
}
