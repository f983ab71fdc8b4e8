package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	authkit "github.com/smartmailhq/authkit"
	"github.com/smartmailhq/authkit/account"
)

type summaryContextKey struct{}

// SummaryFromContext returns the caller identity Guard injected.
func SummaryFromContext(ctx context.Context) (*authkit.AccountSummary, bool) {
	sum, ok := ctx.Value(summaryContextKey{}).(*authkit.AccountSummary)
	return sum, ok
}

// Guard rejects requests without a valid bearer access token. On success
// the caller identity is available via SummaryFromContext, and the client
// IP and User-Agent are attached for downstream engine calls.
func Guard(engine *authkit.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				unauthorized(w, "not authorized")
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "not authorized, no token provided")
				return
			}

			ctx := withRequestMetadata(r.Context(), r)

			sum, err := engine.AuthenticateAccess(ctx, token)
			if err != nil {
				unauthorized(w, "not authorized, token failed")
				return
			}

			ctx = context.WithValue(ctx, summaryContextKey{}, sum)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles rejects authenticated callers whose role is not listed.
// It must run inside Guard.
func RequireRoles(roles ...account.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sum, ok := SummaryFromContext(r.Context())
			if !ok {
				unauthorized(w, "not authorized")
				return
			}
			for _, role := range roles {
				if sum.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			forbidden(w, "you do not have permission to perform this action")
		})
	}
}

// withRequestMetadata attaches the client IP and User-Agent to ctx.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		// Keep the first hop only.
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		ip = strings.TrimSpace(ip)
	} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	} else {
		ip = r.RemoteAddr
	}

	ctx = authkit.WithClientIP(ctx, ip)
	ctx = authkit.WithUserAgent(ctx, r.UserAgent())
	return ctx
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func unauthorized(w http.ResponseWriter, message string) {
	writeFailure(w, http.StatusUnauthorized, message)
}

func forbidden(w http.ResponseWriter, message string) {
	writeFailure(w, http.StatusForbidden, message)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
