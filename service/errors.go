package service

import "errors"

var (
	// ErrNotFound means the complaint or user does not exist in any partition.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller is authenticated but not allowed to act
	// on this resource. Kept distinct from ErrNotFound so handlers map it to
	// 403 rather than leaking a 404.
	ErrForbidden = errors.New("forbidden")

	// ErrEmailTaken means a registration or staff-creation email collides
	// with an existing account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrStaffIDTaken means the supplied staff id is already in use.
	ErrStaffIDTaken = errors.New("staff id already in use")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// login responses do not reveal which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDisabled means the account exists but has been deactivated.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrFeedbackAlreadySubmitted means the write-once feedback slot is taken.
	ErrFeedbackAlreadySubmitted = errors.New("feedback already submitted")

	// ErrFeedbackNotAvailable means the complaint is not yet resolved or
	// closed, so feedback cannot be accepted.
	ErrFeedbackNotAvailable = errors.New("feedback only available for resolved complaints")
)

// ValidationError reports a rejected request payload. Handlers map it to a
// 400 with the reason in the body.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Invalid builds a ValidationError.
func Invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
