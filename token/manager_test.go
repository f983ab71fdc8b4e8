package token

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		AccessSecret:  bytes.Repeat([]byte("a"), 32),
		RefreshSecret: bytes.Repeat([]byte("r"), 32),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
		Issuer:        "authkit-test",
		Audience:      "authkit-test-users",
	}
}

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestAccessRoundTrip(t *testing.T) {
	m := newTestManager(t, testConfig())

	tok, err := m.IssueAccess("acct-1", "ann@x.com", "user")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}

	claims, err := m.Verify(tok, KindAccess)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.AccountID != "acct-1" || claims.Email != "ann@x.com" || claims.Role != "user" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Kind() != KindAccess {
		t.Fatalf("Kind() = %v, want KindAccess", claims.Kind())
	}
}

func TestRefreshCarriesUniqueID(t *testing.T) {
	m := newTestManager(t, testConfig())

	first, err := m.IssueRefresh("acct-1")
	if err != nil {
		t.Fatalf("IssueRefresh failed: %v", err)
	}
	second, err := m.IssueRefresh("acct-1")
	if err != nil {
		t.Fatalf("IssueRefresh failed: %v", err)
	}
	if first == second {
		t.Fatal("two refresh tokens for the same account must differ")
	}

	claims, err := m.Verify(first, KindRefresh)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("refresh token must carry a unique identifier claim")
	}
}

func TestKindSeparation(t *testing.T) {
	m := newTestManager(t, testConfig())

	access, err := m.IssueAccess("acct-1", "ann@x.com", "user")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}
	refresh, err := m.IssueRefresh("acct-1")
	if err != nil {
		t.Fatalf("IssueRefresh failed: %v", err)
	}

	if _, err := m.Verify(access, KindRefresh); !errors.Is(err, ErrInvalid) {
		t.Fatalf("access token verified as refresh: err = %v", err)
	}
	if _, err := m.Verify(refresh, KindAccess); !errors.Is(err, ErrInvalid) {
		t.Fatalf("refresh token verified as access: err = %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTL = time.Millisecond
	m := newTestManager(t, cfg)

	tok, err := m.IssueAccess("acct-1", "ann@x.com", "user")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := m.Verify(tok, KindAccess); !errors.Is(err, ErrExpired) {
		t.Fatalf("expired token: err = %v, want ErrExpired", err)
	}
}

func TestGarbageToken(t *testing.T) {
	m := newTestManager(t, testConfig())

	if _, err := m.Verify("not.a.token", KindAccess); !errors.Is(err, ErrInvalid) {
		t.Fatalf("garbage token: err = %v, want ErrInvalid", err)
	}
}

func TestCrossManagerRejection(t *testing.T) {
	m := newTestManager(t, testConfig())

	other := testConfig()
	other.AccessSecret = bytes.Repeat([]byte("x"), 32)
	other.RefreshSecret = bytes.Repeat([]byte("y"), 32)
	foreign := newTestManager(t, other)

	tok, err := foreign.IssueAccess("acct-1", "ann@x.com", "user")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}

	if _, err := m.Verify(tok, KindAccess); !errors.Is(err, ErrInvalid) {
		t.Fatalf("token under a foreign key: err = %v, want ErrInvalid", err)
	}
}

func TestNewManagerRejectsSharedSecret(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshSecret = cfg.AccessSecret

	if _, err := NewManager(cfg); err == nil {
		t.Fatal("equal access/refresh secrets must be rejected")
	}
}

func TestNewManagerRejectsShortSecret(t *testing.T) {
	cfg := testConfig()
	cfg.AccessSecret = []byte("short")

	if _, err := NewManager(cfg); err == nil {
		t.Fatal("short access secret must be rejected")
	}
}
