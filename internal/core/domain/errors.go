package domain

import (
	"errors"
	"sort"
	"strings"
)

var ErrUserNotFound = errors.New("user not found")
var ErrRoleNotFound = errors.New("role not found")
var ErrDuplicateEmail = errors.New("email already registered")
var ErrRoleExists = errors.New("role already exists")
var ErrRoleInUse = errors.New("role is referenced by existing users")
var ErrInvalidReference = errors.New("role does not exist")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTooManyAttempts = errors.New("too many login attempts")

// ValidationError carries field-level messages for malformed input. It is
// produced before any side effect takes place.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
