package authkit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartmailhq/authkit/account"
)

func TestPasswordResetFlow(t *testing.T) {
	e := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signupTestUser(t, e)

	raw, err := e.ForgotPassword(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}
	if raw == "" {
		t.Fatal("known email must yield a raw reset token")
	}

	if err := e.ResetPassword(ctx, raw, "NewPassw0rd"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	if _, err := e.Login(ctx, "ann@example.com", "Passw0rd"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still works: err = %v", err)
	}
	if _, err := e.Login(ctx, "ann@example.com", "NewPassw0rd"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestResetTokenSingleUse(t *testing.T) {
	e := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signupTestUser(t, e)

	raw, err := e.ForgotPassword(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}
	if err := e.ResetPassword(ctx, raw, "NewPassw0rd"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	if err := e.ResetPassword(ctx, raw, "OtherPassw0rd1"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("replay: err = %v, want ErrResetTokenInvalid", err)
	}
}

func TestResetTokenExpiry(t *testing.T) {
	e := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	res := signupTestUser(t, e)

	raw, err := e.ForgotPassword(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}

	// Age the stored expiry past its window.
	acct, err := e.accounts.FindByID(ctx, res.Account.ID, account.IncludeAll)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	past := time.Now().Add(-time.Minute)
	acct.ResetExpiresAt = &past
	if err := e.accounts.Save(ctx, acct, account.SaveOptions{SkipValidation: true}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := e.ResetPassword(ctx, raw, "NewPassw0rd"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expired token: err = %v, want ErrResetTokenInvalid", err)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	e := newTestEngine(t, testEngineConfig())

	raw, err := e.ForgotPassword(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("ForgotPassword must not reveal account existence: %v", err)
	}
	if raw != "" {
		t.Fatal("unknown email must not yield a token")
	}
}

func TestForgotPasswordSupersedesPriorToken(t *testing.T) {
	e := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signupTestUser(t, e)

	first, err := e.ForgotPassword(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}
	second, err := e.ForgotPassword(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}

	if err := e.ResetPassword(ctx, first, "NewPassw0rd"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("superseded token: err = %v, want ErrResetTokenInvalid", err)
	}
	if err := e.ResetPassword(ctx, second, "NewPassw0rd"); err != nil {
		t.Fatalf("current token rejected: %v", err)
	}
}

func TestResetPasswordWeakPassword(t *testing.T) {
	e := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signupTestUser(t, e)

	raw, err := e.ForgotPassword(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}

	var verr *account.ValidationError
	if err := e.ResetPassword(ctx, raw, "weak"); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *account.ValidationError", err)
	}

	// A rejected password does not consume the token.
	if err := e.ResetPassword(ctx, raw, "NewPassw0rd"); err != nil {
		t.Fatalf("token was consumed by a failed attempt: %v", err)
	}
}
