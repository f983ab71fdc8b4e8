package authkit

import (
	"context"
	"errors"
	"time"

	"github.com/smartmailhq/authkit/account"
	"github.com/smartmailhq/authkit/internal"
	"github.com/smartmailhq/authkit/password"
)

// ForgotPassword issues a password reset token for the account behind the
// email. The raw token is returned for the caller to deliver; only its
// digest is stored. An unknown email returns ("", nil) so the caller can
// answer identically whether or not the account exists. Issuing a new token
// invalidates any previous one.
func (e *Engine) ForgotPassword(ctx context.Context, email string) (string, error) {
	acct, err := e.accounts.FindByEmail(ctx, email, account.IncludeAll)
	if errors.Is(err, account.ErrNotFound) {
		e.emitAudit(ctx, "password_reset_request", "", false, account.ErrNotFound)
		return "", nil
	}
	if err != nil {
		return "", err
	}

	raw, digest, err := internal.NewOpaqueToken()
	if err != nil {
		return "", err
	}

	acct.SetResetToken(digest, time.Now().UTC().Add(e.config.PasswordReset.TokenTTL))
	if err := e.accounts.Save(ctx, acct, account.SaveOptions{SkipValidation: true}); err != nil {
		return "", err
	}

	e.metricInc(MetricPasswordResetRequest)
	e.emitAudit(ctx, "password_reset_request", acct.ID, true, nil)
	return raw, nil
}

// ResetPassword consumes a reset token and installs the new credential.
// The token is single use: its material is cleared before the document is
// written back, so a replay fails with ErrResetTokenInvalid.
func (e *Engine) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if err := password.ValidatePolicy(newPassword); err != nil {
		return &account.ValidationError{Fields: []account.FieldError{{
			Field:   "password",
			Message: err.Error(),
		}}}
	}

	digest := internal.DigestOpaqueToken(rawToken)
	acct, err := e.accounts.FindByResetDigest(ctx, digest, account.IncludeAll)
	if errors.Is(err, account.ErrNotFound) {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, "password_reset", "", false, ErrResetTokenInvalid)
		return ErrResetTokenInvalid
	}
	if err != nil {
		return err
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	acct.PasswordHash = hash
	acct.ClearResetToken()

	if err := e.accounts.Save(ctx, acct, account.SaveOptions{}); err != nil {
		return err
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, "password_reset", acct.ID, true, nil)
	return nil
}
