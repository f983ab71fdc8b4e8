package account

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Role is the authorization role attached to an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

const (
	nameMinLength     = 2
	nameMaxLength     = 50
	passwordMinLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldError names a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Session is one active device session. Token holds the raw refresh token
// string; revocation is an exact-string match against it.
type Session struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
	UserAgent string    `json:"userAgent,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
}

// Account is the persisted account document.
type Account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash,omitempty"`
	Role         Role   `json:"role"`
	IsActive     bool   `json:"isActive"`

	IsEmailVerified         bool       `json:"isEmailVerified"`
	VerificationTokenDigest string     `json:"verificationTokenDigest,omitempty"`
	VerificationExpiresAt   *time.Time `json:"verificationExpiresAt,omitempty"`

	ResetTokenDigest string     `json:"resetTokenDigest,omitempty"`
	ResetExpiresAt   *time.Time `json:"resetExpiresAt,omitempty"`

	Sessions []Session `json:"sessions,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public is the safe projection of an account for API responses.
type Public struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	IsActive        bool      `json:"isActive"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Public strips credential, token material, and sessions from the document.
func (a *Account) Public() Public {
	return Public{
		ID:              a.ID,
		Name:            a.Name,
		Email:           a.Email,
		Role:            a.Role,
		IsActive:        a.IsActive,
		IsEmailVerified: a.IsEmailVerified,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// NormalizeEmail lowercases and trims an email address for use as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the string looks like an email address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Validate checks the document's own fields. It does not inspect the
// credential hash or token material.
func (a *Account) Validate() error {
	var fields []FieldError

	name := strings.TrimSpace(a.Name)
	if n := utf8.RuneCountInString(name); n < nameMinLength || n > nameMaxLength {
		fields = append(fields, FieldError{
			Field:   "name",
			Message: fmt.Sprintf("name must be between %d and %d characters", nameMinLength, nameMaxLength),
		})
	}
	if !ValidEmail(a.Email) {
		fields = append(fields, FieldError{Field: "email", Message: "please provide a valid email"})
	}
	if !a.Role.Valid() {
		fields = append(fields, FieldError{Field: "role", Message: "role must be user or admin"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// PruneSessions drops sessions older than lifetime, measured from now.
func (a *Account) PruneSessions(now time.Time, lifetime time.Duration) {
	if len(a.Sessions) == 0 || lifetime <= 0 {
		return
	}
	cutoff := now.Add(-lifetime)
	kept := a.Sessions[:0]
	for _, s := range a.Sessions {
		if s.CreatedAt.After(cutoff) {
			kept = append(kept, s)
		}
	}
	a.Sessions = kept
}

// AppendSession records a new device session.
func (a *Account) AppendSession(s Session) {
	a.Sessions = append(a.Sessions, s)
}

// RemoveSession drops the session holding the exact refresh token string.
// Removing a token that is not present is a no-op.
func (a *Account) RemoveSession(token string) {
	kept := a.Sessions[:0]
	for _, s := range a.Sessions {
		if s.Token != token {
			kept = append(kept, s)
		}
	}
	a.Sessions = kept
}

// ClearSessions revokes every session on the account.
func (a *Account) ClearSessions() {
	a.Sessions = nil
}

// HasSession reports whether the exact refresh token string is active.
func (a *Account) HasSession(token string) bool {
	for _, s := range a.Sessions {
		if s.Token == token {
			return true
		}
	}
	return false
}

// SetResetToken stores reset token material; any prior reset token is
// invalidated by the overwrite.
func (a *Account) SetResetToken(digest string, expiresAt time.Time) {
	a.ResetTokenDigest = digest
	a.ResetExpiresAt = &expiresAt
}

// ClearResetToken removes reset token material.
func (a *Account) ClearResetToken() {
	a.ResetTokenDigest = ""
	a.ResetExpiresAt = nil
}

// SetVerificationToken stores verification token material; any prior
// verification token is invalidated by the overwrite.
func (a *Account) SetVerificationToken(digest string, expiresAt time.Time) {
	a.VerificationTokenDigest = digest
	a.VerificationExpiresAt = &expiresAt
}

// ClearVerificationToken removes verification token material.
func (a *Account) ClearVerificationToken() {
	a.VerificationTokenDigest = ""
	a.VerificationExpiresAt = nil
}
