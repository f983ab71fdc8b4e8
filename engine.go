package authkit

import (
	"context"
	"errors"
	"time"

	"github.com/smartmailhq/authkit/account"
	"github.com/smartmailhq/authkit/session"
	"github.com/smartmailhq/authkit/token"
)

// Engine is the authentication core. Build one with the Builder; it is safe
// for concurrent use.
type Engine struct {
	config   Config
	tokens   *token.Manager
	hasher   passwordHasher
	accounts *account.Store
	sessions *session.Manager
	metrics  *Metrics
	audit    *auditDispatcher
}

// passwordHasher is the credential surface the engine needs. The concrete
// implementation is password.Hasher.
type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
	NeedsUpgrade(encodedHash string) (bool, error)
}

// Close shuts the audit pipeline down, draining buffered events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the counter registry.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType, accountID string, success bool, failure error) {
	if e == nil || e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if failure != nil {
		event.Error = failure.Error()
	}
	e.audit.Emit(ctx, event)
}

func (e *Engine) tokenInfo() TokenInfo {
	return TokenInfo{
		AccessTokenExpiresIn:  formatExpiry(e.config.Token.AccessTTL),
		RefreshTokenExpiresIn: formatExpiry(e.config.Token.RefreshTTL),
	}
}

// Login verifies the credential and establishes a new device session. An
// unknown email and a wrong password return the same ErrInvalidCredentials
// so the response does not reveal which accounts exist. Deactivated
// accounts are rejected only after the credential verifies.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (*AuthResult, error) {
	acct, err := e.accounts.FindByEmail(ctx, email, account.IncludeAll)
	if errors.Is(err, account.ErrNotFound) {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, "login", "", false, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := e.hasher.Verify(plaintext, acct.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, "login", acct.ID, false, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	if !acct.IsActive {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, "login", acct.ID, false, ErrAccountDeactivated)
		return nil, ErrAccountDeactivated
	}

	if e.config.Password.UpgradeOnLogin {
		// Best effort: a rehash failure must not block the login.
		if upgrade, err := e.hasher.NeedsUpgrade(acct.PasswordHash); err == nil && upgrade {
			if rehashed, err := e.hasher.Hash(plaintext); err == nil {
				acct.PasswordHash = rehashed
			}
		}
	}

	result, err := e.establishSession(ctx, acct)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, "login", acct.ID, true, nil)
	return result, nil
}

// Refresh rotates a session: the presented refresh token is revoked and a
// new pair takes its place. A second use of the old token fails with
// ErrSessionNotFound.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	acct, raw, err := e.sessions.AuthenticateRefreshToken(ctx, refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		mapped := e.mapSessionError(err)
		e.emitAudit(ctx, "refresh", "", false, mapped)
		return nil, mapped
	}

	acct.RemoveSession(raw)
	e.metricInc(MetricSessionInvalidated)

	result, err := e.establishSession(ctx, acct)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, "refresh", acct.ID, true, nil)
	return result, nil
}

// Logout revokes one device session. It is idempotent: an empty token, an
// unknown account, or a token that is not recorded all succeed without
// effect.
func (e *Engine) Logout(ctx context.Context, accountID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	acct, err := e.accounts.FindByID(ctx, accountID, account.IncludeAll)
	if errors.Is(err, account.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if !acct.HasSession(refreshToken) {
		return nil
	}

	acct.RemoveSession(refreshToken)
	if err := e.accounts.Save(ctx, acct, account.SaveOptions{SkipValidation: true}); err != nil {
		return err
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, "logout", accountID, true, nil)
	return nil
}

// LogoutAll revokes every session on the account.
func (e *Engine) LogoutAll(ctx context.Context, accountID string) error {
	acct, err := e.accounts.FindByID(ctx, accountID, account.IncludeAll)
	if errors.Is(err, account.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return err
	}

	acct.ClearSessions()
	if err := e.accounts.Save(ctx, acct, account.SaveOptions{SkipValidation: true}); err != nil {
		return err
	}

	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, "logout_all", accountID, true, nil)
	return nil
}

// AuthenticateAccess resolves the caller behind an access token.
func (e *Engine) AuthenticateAccess(ctx context.Context, accessToken string) (*AccountSummary, error) {
	sum, err := e.sessions.AuthenticateAccessToken(ctx, accessToken)
	if err != nil {
		return nil, e.mapSessionError(err)
	}
	return &AccountSummary{
		AccountID: sum.AccountID,
		Email:     sum.Email,
		Role:      sum.Role,
	}, nil
}

// establishSession mints a pair, records the session on the account, and
// persists the document.
func (e *Engine) establishSession(ctx context.Context, acct *account.Account) (*AuthResult, error) {
	access, refresh, err := e.sessions.IssueTokenPair(acct, userAgentFromContext(ctx), clientIPFromContext(ctx))
	if err != nil {
		return nil, err
	}

	if err := e.accounts.Save(ctx, acct, account.SaveOptions{SkipValidation: true}); err != nil {
		return nil, err
	}

	e.metricInc(MetricSessionCreated)

	return &AuthResult{
		Account: acct.Public(),
		Tokens: AuthTokens{
			AccessToken:  access,
			RefreshToken: refresh,
		},
		TokenInfo: e.tokenInfo(),
	}, nil
}

// mapSessionError translates sub-package sentinels into the engine's.
func (e *Engine) mapSessionError(err error) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, token.ErrInvalid):
		return ErrTokenInvalid
	case errors.Is(err, session.ErrAccountNotFound):
		return ErrAccountNotFound
	case errors.Is(err, session.ErrAccountDeactivated):
		return ErrAccountDeactivated
	case errors.Is(err, session.ErrSessionNotFound):
		return ErrSessionNotFound
	default:
		return err
	}
}
