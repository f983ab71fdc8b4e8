package token

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind is the tagged token variant. Every issued token embeds exactly one
// kind and verification matches it exhaustively; an absent or unknown tag is
// an invalid token, never a silent pass.
type Kind uint8

const (
	// KindAccess marks short-lived tokens that authorize API calls.
	KindAccess Kind = iota + 1
	// KindRefresh marks long-lived tokens exchanged for new token pairs.
	KindRefresh
)

const (
	claimAccess  = "access"
	claimRefresh = "refresh"

	minSecretBytes = 32
)

// Verification failures are collapsed into two sentinels: the elapsed-window
// case and everything else. Callers never see parser internals.
var (
	// ErrExpired is returned when a token's validity window has elapsed.
	ErrExpired = errors.New("token expired")
	// ErrInvalid is returned for any other verification failure: bad
	// signature, malformed payload, or a kind tag that does not match.
	ErrInvalid = errors.New("invalid token")
)

func (k Kind) String() string {
	switch k {
	case KindAccess:
		return claimAccess
	case KindRefresh:
		return claimRefresh
	default:
		return "unknown"
	}
}

func kindFromClaim(tag string) (Kind, error) {
	switch tag {
	case claimAccess:
		return KindAccess, nil
	case claimRefresh:
		return KindRefresh, nil
	default:
		return 0, ErrInvalid
	}
}

// Config defines the codec's signing material and expiry policies.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// Claims is the decoded payload of a verified token. TokenType is the wire
// form of the kind tag; use [Claims.Kind] for the decoded variant.
type Claims struct {
	AccountID string `json:"uid"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// Kind returns the tagged variant decoded from the wire tag. It only returns
// a valid Kind for claims produced by [Manager.Verify].
func (c *Claims) Kind() Kind {
	k, _ := kindFromClaim(c.TokenType)
	return k
}

// Manager signs and verifies both token kinds. It is immutable after
// construction and safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a ready [Manager]. The two secrets
// must be independent: equal keys would collapse the access/refresh trust
// boundary and are rejected outright.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) < minSecretBytes {
		return nil, fmt.Errorf("access secret must be at least %d bytes", minSecretBytes)
	}
	if len(cfg.RefreshSecret) < minSecretBytes {
		return nil, fmt.Errorf("refresh secret must be at least %d bytes", minSecretBytes)
	}
	if bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must be distinct")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token TTLs must be > 0")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Manager{config: cfg}, nil
}

// AccessTTL returns the configured access token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.config.AccessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.config.RefreshTTL }

// IssueAccess mints a signed access token embedding the subject's identity
// claims. Expiry is now + AccessTTL.
func (m *Manager) IssueAccess(accountID, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: accountID,
		Email:     email,
		Role:      role,
		TokenType: claimAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.AccessSecret)
}

// IssueRefresh mints a signed refresh token. The payload carries only the
// subject id plus a unique per-token identifier claim; revocation in this
// system happens by exact-string matching against the account's session
// list, so the identifier exists to permit future revocation-by-id.
func (m *Manager) IssueRefresh(accountID string) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: accountID,
		TokenType: claimRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.RefreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.RefreshSecret)
}

// Verify checks a token's signature and validity window under the key for
// the expected kind, then matches the embedded kind tag. Returns
// [ErrExpired] for an elapsed window and [ErrInvalid] for everything else,
// including a kind mismatch.
func (m *Manager) Verify(tokenStr string, expected Kind) (*Claims, error) {
	var key []byte
	switch expected {
	case KindAccess:
		key = m.config.AccessSecret
	case KindRefresh:
		key = m.config.RefreshSecret
	default:
		return nil, ErrInvalid
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalid
	}

	kind, err := kindFromClaim(claims.TokenType)
	if err != nil || kind != expected {
		return nil, ErrInvalid
	}

	return claims, nil
}
