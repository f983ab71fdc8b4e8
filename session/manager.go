package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartmailhq/authkit/account"
	"github.com/smartmailhq/authkit/token"
)

var (
	// ErrAccountNotFound is returned when a token names an account that no
	// longer exists.
	ErrAccountNotFound = errors.New("session: account not found")
	// ErrAccountDeactivated is returned when the account exists but is
	// switched off.
	ErrAccountDeactivated = errors.New("session: account deactivated")
	// ErrSessionNotFound is returned when a refresh token verifies
	// cryptographically but is not recorded on the account. A rotated or
	// revoked token lands here.
	ErrSessionNotFound = errors.New("session: session not found")
)

// Summary is the caller identity derived from a verified access token.
type Summary struct {
	AccountID string
	Email     string
	Role      account.Role
}

// Manager issues and authenticates token pairs against the account store.
type Manager struct {
	codec    *token.Manager
	accounts *account.Store
}

// NewManager wires the codec and store together.
func NewManager(codec *token.Manager, accounts *account.Store) (*Manager, error) {
	if codec == nil {
		return nil, errors.New("session: token manager is required")
	}
	if accounts == nil {
		return nil, errors.New("session: account store is required")
	}
	return &Manager{codec: codec, accounts: accounts}, nil
}

// IssueTokenPair mints an access/refresh pair and appends the refresh token
// to the account's session list in memory. The caller persists the account.
func (m *Manager) IssueTokenPair(acct *account.Account, userAgent, clientIP string) (access, refresh string, err error) {
	access, err = m.codec.IssueAccess(acct.ID, acct.Email, string(acct.Role))
	if err != nil {
		return "", "", fmt.Errorf("session: issue access token: %w", err)
	}
	refresh, err = m.codec.IssueRefresh(acct.ID)
	if err != nil {
		return "", "", fmt.Errorf("session: issue refresh token: %w", err)
	}

	acct.AppendSession(account.Session{
		Token:     refresh,
		CreatedAt: time.Now().UTC(),
		UserAgent: userAgent,
		IPAddress: clientIP,
	})
	return access, refresh, nil
}

// AuthenticateAccessToken verifies an access token and resolves the caller.
func (m *Manager) AuthenticateAccessToken(ctx context.Context, raw string) (*Summary, error) {
	claims, err := m.codec.Verify(raw, token.KindAccess)
	if err != nil {
		return nil, err
	}

	acct, err := m.accounts.FindByID(ctx, claims.AccountID, 0)
	if errors.Is(err, account.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	if !acct.IsActive {
		return nil, ErrAccountDeactivated
	}

	return &Summary{
		AccountID: acct.ID,
		Email:     acct.Email,
		Role:      acct.Role,
	}, nil
}

// AuthenticateRefreshToken verifies a refresh token and checks it against
// the account's recorded sessions. On success it returns the complete
// account document so the caller can rotate and save in place, plus the
// raw token for removal.
func (m *Manager) AuthenticateRefreshToken(ctx context.Context, raw string) (*account.Account, string, error) {
	claims, err := m.codec.Verify(raw, token.KindRefresh)
	if err != nil {
		return nil, "", err
	}

	acct, err := m.accounts.FindByID(ctx, claims.AccountID, account.IncludeAll)
	if errors.Is(err, account.ErrNotFound) {
		return nil, "", ErrAccountNotFound
	}
	if err != nil {
		return nil, "", err
	}

	if !acct.HasSession(raw) {
		return nil, "", ErrSessionNotFound
	}
	if !acct.IsActive {
		return nil, "", ErrAccountDeactivated
	}

	return acct, raw, nil
}
