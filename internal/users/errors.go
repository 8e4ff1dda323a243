package users

import (
	"errors"
	"fmt"
)

// Messages returned to API clients for store failures.
const (
	MsgRequired       = "Name, email, and age are required"
	MsgInvalidAge     = "Age must be an integer"
	MsgDuplicateEmail = "Email already exists"
	MsgNotFound       = "User not found"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when another record already uses the email.
	ErrDuplicateEmail = errors.New("email already exists")
)

// ValidationError is returned when input is missing or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return e.Message
}
