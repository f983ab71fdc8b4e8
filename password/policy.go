package password

import "errors"

const minPasswordLength = 6

// Policy errors returned by ValidatePolicy. Callers surface the message
// verbatim as the per-field validation error for the password field.
var (
	ErrTooShort      = errors.New("password must be at least 6 characters long")
	ErrMissingLower  = errors.New("password must contain at least one lowercase letter")
	ErrMissingUpper  = errors.New("password must contain at least one uppercase letter")
	ErrMissingNumber = errors.New("password must contain at least one number")
)

// ValidatePolicy checks password against the account password policy:
// minimum six characters with at least one lowercase letter, one uppercase
// letter, and one digit. The first violated rule is returned.
func ValidatePolicy(password string) error {
	if len(password) < minPasswordLength {
		return ErrTooShort
	}

	var hasLower, hasUpper, hasNumber bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasNumber = true
		}
	}

	switch {
	case !hasLower:
		return ErrMissingLower
	case !hasUpper:
		return ErrMissingUpper
	case !hasNumber:
		return ErrMissingNumber
	}

	return nil
}
