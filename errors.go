package authkit

import "errors"

var (
	// ErrInvalidCredentials is returned when the email or password is wrong.
	// Both cases share one error so callers cannot distinguish an unknown
	// email from a bad password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned by Signup when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrAccountNotFound is returned when an operation names an account that
	// does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountDeactivated is returned when the account exists but is
	// switched off.
	ErrAccountDeactivated = errors.New("account deactivated")

	// ErrSessionNotFound is returned when a refresh token verifies but is
	// not recorded on the account. A rotated, revoked, or expired session
	// lands here.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTokenExpired is returned when a JWT is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned when a JWT fails signature, type, or
	// claim checks.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrResetTokenInvalid is returned when a password reset token is
	// unknown, expired, or already used.
	ErrResetTokenInvalid = errors.New("reset token invalid or expired")

	// ErrVerificationTokenInvalid is returned when an email verification
	// token is unknown, expired, or already used.
	ErrVerificationTokenInvalid = errors.New("verification token invalid or expired")
)
