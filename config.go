package authkit

import (
	"bytes"
	"errors"
	"time"

	"github.com/smartmailhq/authkit/account"
)

// Config carries every tunable of the Engine. Zero values are filled from
// defaultConfig by the Builder; Validate runs at Build time and rejects
// configurations the engine cannot operate safely with.
type Config struct {
	Token             TokenConfig
	Session           SessionConfig
	Password          PasswordConfig
	PasswordReset     PasswordResetConfig
	EmailVerification EmailVerificationConfig
	Account           AccountConfig
	Audit             AuditConfig
	Metrics           MetricsConfig
}

// TokenConfig controls JWT signing and lifetimes. Access and refresh tokens
// are signed with distinct secrets so one kind can never pass for the other.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	// Lifetime bounds how long a recorded session remains valid. It should
	// match or exceed Token.RefreshTTL.
	Lifetime time.Duration
	// RedisPrefix namespaces every key the engine writes.
	RedisPrefix string
}

// PasswordConfig controls credential hashing.
type PasswordConfig struct {
	// Cost is the bcrypt work factor.
	Cost int
	// UpgradeOnLogin rehashes a credential at the configured cost when a
	// login verifies against a hash produced at a lower one.
	UpgradeOnLogin bool
}

// PasswordResetConfig controls the forgot/reset password flow.
type PasswordResetConfig struct {
	TokenTTL time.Duration
}

// EmailVerificationConfig controls the email verification flow.
type EmailVerificationConfig struct {
	TokenTTL time.Duration
}

// AccountConfig controls account creation.
type AccountConfig struct {
	DefaultRole account.Role
}

// AuditConfig controls the asynchronous audit pipeline.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counter registry.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration the Builder starts from. Secrets
// are left empty and must be supplied by the caller.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 30 * 24 * time.Hour,
			Issuer:     "authkit",
			Audience:   "authkit-users",
			Leeway:     30 * time.Second,
		},
		Session: SessionConfig{
			Lifetime:    30 * 24 * time.Hour,
			RedisPrefix: "ak",
		},
		Password: PasswordConfig{
			Cost:           12,
			UpgradeOnLogin: true,
		},
		PasswordReset: PasswordResetConfig{
			TokenTTL: 10 * time.Minute,
		},
		EmailVerification: EmailVerificationConfig{
			TokenTTL: 24 * time.Hour,
		},
		Account: AccountConfig{
			DefaultRole: account.RoleUser,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if len(c.Token.AccessSecret) == 0 {
		return errors.New("config: Token.AccessSecret is required")
	}
	if len(c.Token.RefreshSecret) == 0 {
		return errors.New("config: Token.RefreshSecret is required")
	}
	if bytes.Equal(c.Token.AccessSecret, c.Token.RefreshSecret) {
		return errors.New("config: access and refresh secrets must differ")
	}
	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	if c.Token.AccessTTL >= c.Token.RefreshTTL {
		return errors.New("config: access TTL must be shorter than refresh TTL")
	}
	if c.Session.Lifetime < c.Token.RefreshTTL {
		return errors.New("config: session lifetime must cover the refresh TTL")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("config: Session.RedisPrefix is required")
	}
	if c.PasswordReset.TokenTTL <= 0 {
		return errors.New("config: PasswordReset.TokenTTL must be positive")
	}
	if c.EmailVerification.TokenTTL <= 0 {
		return errors.New("config: EmailVerification.TokenTTL must be positive")
	}
	if !c.Account.DefaultRole.Valid() {
		return errors.New("config: Account.DefaultRole must be user or admin")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("config: Audit.BufferSize must be positive when audit is enabled")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.AccessSecret = append([]byte(nil), cfg.Token.AccessSecret...)
	out.Token.RefreshSecret = append([]byte(nil), cfg.Token.RefreshSecret...)
	return out
}
