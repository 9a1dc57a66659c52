package user

import "errors"

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTooLong  = errors.New("ensure this field has no more than 150 characters")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrInvalidEmail     = errors.New("enter a valid email address")
)

// FieldError ties a registration problem to the request field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
