package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Config defines the cost parameters for the bcrypt hasher.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	Cost int
}

// Hasher is a bcrypt-backed one-way hasher for the password credential.
// It is stateless after construction and safe for concurrent use.
type Hasher struct {
	config Config
}

// NewHasher validates cfg and returns a ready [Hasher].
func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.Cost < bcrypt.MinCost || cfg.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("password cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &Hasher{config: cfg}, nil
}

// Hash derives a salted, cost-stretched digest of password. The returned
// string embeds the salt and cost and is the only form ever persisted.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.config.Cost)
	if err != nil {
		return "", err
	}

	return string(digest), nil
}

// Verify reports whether password matches encodedHash.
//
// A simple mismatch returns (false, nil). A non-nil error is returned only
// for process-level failures (corrupt or foreign hash encodings), never for
// a wrong password, so callers can distinguish bad credentials from broken
// stored state.
func (h *Hasher) Verify(password, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, fmt.Errorf("password comparison failed: %w", err)
}

// NeedsUpgrade reports whether encodedHash was produced with a lower cost
// than currently configured. Used for best-effort rehash on login.
func (h *Hasher) NeedsUpgrade(encodedHash string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(encodedHash))
	if err != nil {
		return false, err
	}

	return cost < h.config.Cost, nil
}
