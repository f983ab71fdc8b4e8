package authkit

import (
	"context"
	"errors"
	"time"

	"github.com/smartmailhq/authkit/account"
	"github.com/smartmailhq/authkit/internal"
)

// RequestEmailVerification issues a fresh verification token for the
// account. The raw token is returned for delivery; only its digest is
// stored, and any earlier verification token is invalidated by the
// overwrite.
func (e *Engine) RequestEmailVerification(ctx context.Context, accountID string) (string, error) {
	acct, err := e.accounts.FindByID(ctx, accountID, account.IncludeAll)
	if errors.Is(err, account.ErrNotFound) {
		return "", ErrAccountNotFound
	}
	if err != nil {
		return "", err
	}

	raw, digest, err := internal.NewOpaqueToken()
	if err != nil {
		return "", err
	}

	acct.SetVerificationToken(digest, time.Now().UTC().Add(e.config.EmailVerification.TokenTTL))
	if err := e.accounts.Save(ctx, acct, account.SaveOptions{SkipValidation: true}); err != nil {
		return "", err
	}

	e.metricInc(MetricEmailVerificationRequest)
	e.emitAudit(ctx, "email_verification_request", acct.ID, true, nil)
	return raw, nil
}

// VerifyEmail consumes a verification token and marks the account verified.
// The token is single use.
func (e *Engine) VerifyEmail(ctx context.Context, rawToken string) error {
	digest := internal.DigestOpaqueToken(rawToken)
	acct, err := e.accounts.FindByVerificationDigest(ctx, digest, account.IncludeAll)
	if errors.Is(err, account.ErrNotFound) {
		e.metricInc(MetricEmailVerificationFailure)
		e.emitAudit(ctx, "email_verification", "", false, ErrVerificationTokenInvalid)
		return ErrVerificationTokenInvalid
	}
	if err != nil {
		return err
	}

	acct.IsEmailVerified = true
	acct.ClearVerificationToken()

	if err := e.accounts.Save(ctx, acct, account.SaveOptions{SkipValidation: true}); err != nil {
		return err
	}

	e.metricInc(MetricEmailVerificationSuccess)
	e.emitAudit(ctx, "email_verification", acct.ID, true, nil)
	return nil
}
