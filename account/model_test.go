package account

import (
	"errors"
	"testing"
	"time"
)

func validAccount() *Account {
	return &Account{
		ID:       "acct-1",
		Name:     "Ann Example",
		Email:    "ann@example.com",
		Role:     RoleUser,
		IsActive: true,
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*Account)
		wantField string
	}{
		{"valid", func(a *Account) {}, ""},
		{"short name", func(a *Account) { a.Name = "a" }, "name"},
		{"long name", func(a *Account) {
			long := make([]byte, 51)
			for i := range long {
				long[i] = 'x'
			}
			a.Name = string(long)
		}, "name"},
		{"bad email", func(a *Account) { a.Email = "not-an-email" }, "email"},
		{"bad role", func(a *Account) { a.Role = "root" }, "role"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			acct := validAccount()
			tc.mutate(acct)
			err := acct.Validate()
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			found := false
			for _, f := range verr.Fields {
				if f.Field == tc.wantField {
					found = true
				}
			}
			if !found {
				t.Fatalf("Validate() fields %+v, want field %q", verr.Fields, tc.wantField)
			}
		})
	}
}

func TestValidateCollectsAllFields(t *testing.T) {
	acct := validAccount()
	acct.Name = "x"
	acct.Email = "bad"

	var verr *ValidationError
	if err := acct.Validate(); !errors.As(err, &verr) {
		t.Fatalf("Validate() = %v, want *ValidationError", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("got %d field errors, want 2: %+v", len(verr.Fields), verr.Fields)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ann@Example.COM "); got != "ann@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}

func TestSessionListOperations(t *testing.T) {
	acct := validAccount()
	now := time.Now()

	acct.AppendSession(Session{Token: "t1", CreatedAt: now})
	acct.AppendSession(Session{Token: "t2", CreatedAt: now})
	acct.AppendSession(Session{Token: "t3", CreatedAt: now})

	if !acct.HasSession("t2") {
		t.Fatal("expected t2 to be active")
	}

	acct.RemoveSession("t2")
	if acct.HasSession("t2") {
		t.Fatal("t2 should have been removed")
	}
	if len(acct.Sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(acct.Sessions))
	}

	// Removing an absent token is a no-op.
	acct.RemoveSession("t2")
	if len(acct.Sessions) != 2 {
		t.Fatalf("got %d sessions after no-op removal, want 2", len(acct.Sessions))
	}

	acct.ClearSessions()
	if len(acct.Sessions) != 0 {
		t.Fatalf("got %d sessions after clear, want 0", len(acct.Sessions))
	}
}

func TestPruneSessions(t *testing.T) {
	acct := validAccount()
	now := time.Now()

	acct.AppendSession(Session{Token: "old", CreatedAt: now.Add(-31 * 24 * time.Hour)})
	acct.AppendSession(Session{Token: "fresh", CreatedAt: now.Add(-time.Hour)})

	acct.PruneSessions(now, 30*24*time.Hour)

	if acct.HasSession("old") {
		t.Fatal("expired session survived pruning")
	}
	if !acct.HasSession("fresh") {
		t.Fatal("fresh session was pruned")
	}
}

func TestPublicProjection(t *testing.T) {
	acct := validAccount()
	acct.PasswordHash = "hash"
	acct.ResetTokenDigest = "digest"
	acct.AppendSession(Session{Token: "t1", CreatedAt: time.Now()})

	pub := acct.Public()
	if pub.ID != acct.ID || pub.Email != acct.Email || pub.Name != acct.Name {
		t.Fatalf("projection mismatch: %+v", pub)
	}
}

func TestTokenMaterial(t *testing.T) {
	acct := validAccount()
	exp := time.Now().Add(10 * time.Minute)

	acct.SetResetToken("d1", exp)
	if acct.ResetTokenDigest != "d1" || acct.ResetExpiresAt == nil {
		t.Fatal("reset token material not set")
	}
	acct.SetResetToken("d2", exp)
	if acct.ResetTokenDigest != "d2" {
		t.Fatal("overwrite must replace the digest")
	}
	acct.ClearResetToken()
	if acct.ResetTokenDigest != "" || acct.ResetExpiresAt != nil {
		t.Fatal("reset token material not cleared")
	}

	acct.SetVerificationToken("v1", exp)
	if acct.VerificationTokenDigest != "v1" || acct.VerificationExpiresAt == nil {
		t.Fatal("verification token material not set")
	}
	acct.ClearVerificationToken()
	if acct.VerificationTokenDigest != "" || acct.VerificationExpiresAt != nil {
		t.Fatal("verification token material not cleared")
	}
}
