package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// fieldName maps a struct field to its wire name.
func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "RoleID":
		return "role_id"
	case "PasswordConfirmation":
		return "password_confirmation"
	default:
		return strings.ToLower(fe.Field())
	}
}

// fieldMessage converts a single validation failure into a human-readable
// message keyed by tag.
func fieldMessage(fe validator.FieldError) string {
	field := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "eqfield":
		return field + " must match password"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// collectFieldErrors flattens validator errors into a field→message map.
// Non-validation errors are reported under a catch-all key so they are never
// silently dropped.
func collectFieldErrors(err error, fields map[string]string) {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["_"] = err.Error()
		return
	}
	for _, fe := range ve {
		fields[fieldName(fe)] = fieldMessage(fe)
	}
}

// normalizeEmail applies the store-wide email policy: case-insensitive,
// surrounding whitespace ignored.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
