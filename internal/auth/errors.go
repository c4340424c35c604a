package auth

import "errors"

// Failure modes of the credential lifecycle. Handlers map these onto HTTP
// statuses and user-facing messages; several are deliberately collapsed
// client-side so responses do not reveal whether an account exists.
var (
	// ErrCodeInvalidOrExpired covers both "no passcode on file" and
	// "passcode expired" so callers cannot tell which.
	ErrCodeInvalidOrExpired = errors.New("invalid or expired passcode")
	ErrCodeMismatch         = errors.New("passcode mismatch")
	ErrCodeAttemptsExceeded = errors.New("passcode attempts exceeded")

	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
)
