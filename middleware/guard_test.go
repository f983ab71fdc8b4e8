package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	authkit "github.com/smartmailhq/authkit"
	"github.com/smartmailhq/authkit/account"
)

func newTestEngine(t *testing.T) *authkit.Engine {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := authkit.DefaultConfig()
	cfg.Token.AccessSecret = bytes.Repeat([]byte("a"), 32)
	cfg.Token.RefreshSecret = bytes.Repeat([]byte("r"), 32)
	cfg.Password.Cost = bcrypt.MinCost

	engine, err := authkit.New().WithConfig(cfg).WithRedis(client).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func TestGuardRejectsMissingToken(t *testing.T) {
	engine := newTestEngine(t)

	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGuardInjectsSummary(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Signup(context.Background(), authkit.SignupInput{
		Name:     "Ann Example",
		Email:    "ann@example.com",
		Password: "Passw0rd",
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	var got *authkit.AccountSummary
	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SummaryFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+res.Tokens.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || got.Email != "ann@example.com" {
		t.Fatalf("summary = %+v", got)
	}
}

func TestRequireRoles(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Signup(context.Background(), authkit.SignupInput{
		Name:     "Ann Example",
		Email:    "ann@example.com",
		Password: "Passw0rd",
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	adminOnly := Guard(engine)(RequireRoles(account.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("user role must not reach an admin route")
	})))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+res.Tokens.AccessToken)
	rec := httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	userOK := Guard(engine)(RequireRoles(account.RoleUser, account.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/either", nil)
	req.Header.Set("Authorization", "Bearer "+res.Tokens.AccessToken)
	userOK.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
