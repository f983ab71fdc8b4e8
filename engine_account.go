package authkit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartmailhq/authkit/account"
	"github.com/smartmailhq/authkit/internal"
	"github.com/smartmailhq/authkit/password"
)

// SignupInput carries the fields a new account is created from.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

func (in SignupInput) validate() error {
	var fields []account.FieldError

	name := strings.TrimSpace(in.Name)
	if n := len([]rune(name)); n < 2 || n > 50 {
		fields = append(fields, account.FieldError{
			Field:   "name",
			Message: "name must be between 2 and 50 characters",
		})
	}
	if !account.ValidEmail(in.Email) {
		fields = append(fields, account.FieldError{
			Field:   "email",
			Message: "please provide a valid email",
		})
	}
	if err := password.ValidatePolicy(in.Password); err != nil {
		fields = append(fields, account.FieldError{
			Field:   "password",
			Message: err.Error(),
		})
	}

	if len(fields) > 0 {
		return &account.ValidationError{Fields: fields}
	}
	return nil
}

// Signup creates an account, logs it straight in, and returns the raw email
// verification token alongside the token pair. Only the verification
// token's digest is stored.
func (e *Engine) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := e.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	rawVerification, verificationDigest, err := internal.NewOpaqueToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	acct := &account.Account{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        account.NormalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         e.config.Account.DefaultRole,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	acct.SetVerificationToken(verificationDigest, now.Add(e.config.EmailVerification.TokenTTL))

	if err := e.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, account.ErrDuplicateEmail) {
			e.metricInc(MetricSignupDuplicate)
			e.emitAudit(ctx, "signup", "", false, ErrEmailTaken)
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	result, err := e.establishSession(ctx, acct)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, "signup", acct.ID, true, nil)

	return &SignupResult{
		AuthResult:        *result,
		VerificationToken: rawVerification,
	}, nil
}

// GetAccount returns the public projection of an account.
func (e *Engine) GetAccount(ctx context.Context, accountID string) (*account.Public, error) {
	acct, err := e.accounts.FindByID(ctx, accountID, 0)
	if errors.Is(err, account.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	pub := acct.Public()
	return &pub, nil
}

// ChangePassword replaces the credential after verifying the current one.
// Existing sessions stay valid.
func (e *Engine) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if err := password.ValidatePolicy(newPassword); err != nil {
		return &account.ValidationError{Fields: []account.FieldError{{
			Field:   "newPassword",
			Message: err.Error(),
		}}}
	}

	acct, err := e.accounts.FindByID(ctx, accountID, account.IncludeAll)
	if errors.Is(err, account.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return err
	}

	ok, err := e.hasher.Verify(currentPassword, acct.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		e.metricInc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, "password_change", accountID, false, ErrInvalidCredentials)
		return ErrInvalidCredentials
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	acct.PasswordHash = hash

	if err := e.accounts.Save(ctx, acct, account.SaveOptions{}); err != nil {
		return err
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, "password_change", accountID, true, nil)
	return nil
}
