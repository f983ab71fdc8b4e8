package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned when the email is already claimed.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUnavailable wraps storage-level failures.
	ErrUnavailable = errors.New("account store unavailable")
)

// Include selects which hidden-by-default fields a lookup should return.
type Include uint8

const (
	// IncludeCredential returns the password hash.
	IncludeCredential Include = 1 << iota
	// IncludeSessions returns the active session list.
	IncludeSessions
	// IncludeResetMaterial returns the reset token digest and expiry.
	IncludeResetMaterial
	// IncludeVerificationMaterial returns the verification token digest and expiry.
	IncludeVerificationMaterial

	// IncludeAll returns the complete document. Loads that feed a later
	// Save must use it: Save writes the whole document, so a projected
	// load would persist the zeroed fields.
	IncludeAll = IncludeCredential | IncludeSessions | IncludeResetMaterial | IncludeVerificationMaterial
)

// SaveOptions controls a Save call.
type SaveOptions struct {
	// SkipValidation persists the document without running field validation.
	// Token and session updates use it so a pre-existing document that would
	// fail today's rules can still be written back.
	SkipValidation bool
}

// Store persists account documents in Redis. The whole document lives as
// JSON under prefix:doc:{id}; email and token-digest lookups go through
// secondary index keys that map back to the account ID.
type Store struct {
	redis           redis.UniversalClient
	prefix          string
	sessionLifetime time.Duration
}

// NewStore builds a Store over the given client. prefix namespaces every
// key; sessionLifetime bounds how long a recorded session stays valid.
func NewStore(client redis.UniversalClient, prefix string, sessionLifetime time.Duration) (*Store, error) {
	if client == nil {
		return nil, errors.New("account: redis client is required")
	}
	if prefix == "" {
		return nil, errors.New("account: key prefix is required")
	}
	if sessionLifetime <= 0 {
		return nil, errors.New("account: session lifetime must be positive")
	}
	return &Store{
		redis:           client,
		prefix:          prefix,
		sessionLifetime: sessionLifetime,
	}, nil
}

func (s *Store) docKey(id string) string   { return s.prefix + ":doc:" + id }
func (s *Store) emailKey(e string) string  { return s.prefix + ":email:" + NormalizeEmail(e) }
func (s *Store) resetKey(d string) string  { return s.prefix + ":reset:" + d }
func (s *Store) verifyKey(d string) string { return s.prefix + ":verify:" + d }

// Ping verifies the backing store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Create persists a new account. The email index key is claimed with SetNX
// first so two concurrent signups for the same address cannot both succeed.
func (s *Store) Create(ctx context.Context, acct *Account) error {
	if err := acct.Validate(); err != nil {
		return err
	}
	acct.Email = NormalizeEmail(acct.Email)

	claimed, err := s.redis.SetNX(ctx, s.emailKey(acct.Email), acct.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !claimed {
		return ErrDuplicateEmail
	}

	if err := s.writeDocument(ctx, acct); err != nil {
		// Release the email claim so a retry is possible.
		s.redis.Del(ctx, s.emailKey(acct.Email))
		return err
	}
	return nil
}

// Save writes the document back, pruning expired sessions and bumping
// UpdatedAt. Validation runs unless opts.SkipValidation is set.
func (s *Store) Save(ctx context.Context, acct *Account, opts SaveOptions) error {
	if !opts.SkipValidation {
		if err := acct.Validate(); err != nil {
			return err
		}
	}
	acct.Email = NormalizeEmail(acct.Email)
	acct.PruneSessions(time.Now(), s.sessionLifetime)
	acct.UpdatedAt = time.Now().UTC()
	return s.writeDocument(ctx, acct)
}

func (s *Store) writeDocument(ctx context.Context, acct *Account) error {
	encoded, err := json.Marshal(acct)
	if err != nil {
		return fmt.Errorf("account: encode document: %w", err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(acct.ID), encoded, 0)
		if ttl := indexTTL(acct.ResetTokenDigest, acct.ResetExpiresAt); ttl > 0 {
			pipe.Set(ctx, s.resetKey(acct.ResetTokenDigest), acct.ID, ttl)
		}
		if ttl := indexTTL(acct.VerificationTokenDigest, acct.VerificationExpiresAt); ttl > 0 {
			pipe.Set(ctx, s.verifyKey(acct.VerificationTokenDigest), acct.ID, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// FindByID loads an account. Fields outside the Include set are zeroed.
func (s *Store) FindByID(ctx context.Context, id string, include Include) (*Account, error) {
	acct, err := s.loadDocument(ctx, s.docKey(id))
	if err != nil {
		return nil, err
	}
	project(acct, include)
	return acct, nil
}

// FindByEmail resolves the email index and loads the account.
func (s *Store) FindByEmail(ctx context.Context, email string, include Include) (*Account, error) {
	id, err := s.redis.Get(ctx, s.emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return s.FindByID(ctx, id, include)
}

// FindByResetDigest resolves a reset token digest to its account. The digest
// and expiry on the loaded document are re-checked; a stale index key whose
// document no longer carries the digest is deleted and reported as not found.
func (s *Store) FindByResetDigest(ctx context.Context, digest string, include Include) (*Account, error) {
	return s.findByDigest(ctx, s.resetKey(digest), include, func(a *Account) bool {
		return a.ResetTokenDigest == digest &&
			a.ResetExpiresAt != nil &&
			a.ResetExpiresAt.After(time.Now())
	})
}

// FindByVerificationDigest resolves a verification token digest to its
// account, with the same stale-index self-healing as FindByResetDigest.
func (s *Store) FindByVerificationDigest(ctx context.Context, digest string, include Include) (*Account, error) {
	return s.findByDigest(ctx, s.verifyKey(digest), include, func(a *Account) bool {
		return a.VerificationTokenDigest == digest &&
			a.VerificationExpiresAt != nil &&
			a.VerificationExpiresAt.After(time.Now())
	})
}

func (s *Store) findByDigest(ctx context.Context, indexKey string, include Include, live func(*Account) bool) (*Account, error) {
	id, err := s.redis.Get(ctx, indexKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	acct, err := s.loadDocument(ctx, s.docKey(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.redis.Del(ctx, indexKey)
		}
		return nil, err
	}
	if !live(acct) {
		s.redis.Del(ctx, indexKey)
		return nil, ErrNotFound
	}
	project(acct, include)
	return acct, nil
}

func (s *Store) loadDocument(ctx context.Context, key string) (*Account, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var acct Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return nil, fmt.Errorf("account: decode document: %w", err)
	}
	return &acct, nil
}

func indexTTL(digest string, expiresAt *time.Time) time.Duration {
	if digest == "" || expiresAt == nil {
		return 0
	}
	return time.Until(*expiresAt)
}

func project(acct *Account, include Include) {
	if include&IncludeCredential == 0 {
		acct.PasswordHash = ""
	}
	if include&IncludeSessions == 0 {
		acct.Sessions = nil
	}
	if include&IncludeResetMaterial == 0 {
		acct.ResetTokenDigest = ""
		acct.ResetExpiresAt = nil
	}
	if include&IncludeVerificationMaterial == 0 {
		acct.VerificationTokenDigest = ""
		acct.VerificationExpiresAt = nil
	}
}
