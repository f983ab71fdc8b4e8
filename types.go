package authkit

import (
	"fmt"
	"time"

	"github.com/smartmailhq/authkit/account"
)

// AuthTokens is the access/refresh pair handed to a client.
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenInfo describes the pair's lifetimes in a form clients can display.
type TokenInfo struct {
	AccessTokenExpiresIn  string `json:"accessTokenExpiresIn"`
	RefreshTokenExpiresIn string `json:"refreshTokenExpiresIn"`
}

// AuthResult is the outcome of an operation that establishes a session.
type AuthResult struct {
	Account   account.Public `json:"user"`
	Tokens    AuthTokens     `json:"tokens"`
	TokenInfo TokenInfo      `json:"tokenInfo"`
}

// SignupResult extends AuthResult with the raw email verification token.
// The caller delivers it to the user; the engine stores only its digest.
type SignupResult struct {
	AuthResult
	VerificationToken string `json:"-"`
}

// AccountSummary is the caller identity resolved from an access token.
type AccountSummary struct {
	AccountID string       `json:"accountId"`
	Email     string       `json:"email"`
	Role      account.Role `json:"role"`
}

// formatExpiry renders a TTL the way clients expect: whole minutes under an
// hour, whole hours under a day, days otherwise.
func formatExpiry(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
