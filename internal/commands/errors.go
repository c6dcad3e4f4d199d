package commands

import "fmt"

// UserError is a problem with the player's input. The dispatcher shows its
// message to the player instead of treating it as a failure.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a user-facing error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}

// UserErrorf formats a user-facing error.
func UserErrorf(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}
