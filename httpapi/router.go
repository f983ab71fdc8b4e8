package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	authkit "github.com/smartmailhq/authkit"
	"github.com/smartmailhq/authkit/middleware"
)

// NewRouter mounts every auth endpoint under /api/auth.
func NewRouter(engine *authkit.Engine) *mux.Router {
	h := NewHandler(engine)
	guard := middleware.Guard(engine)

	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	auth := r.PathPrefix("/api/auth").Subrouter()

	auth.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
	auth.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password", h.ForgotPassword).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password/{token}", h.ResetPassword).Methods(http.MethodPut)
	auth.HandleFunc("/verify-email/{token}", h.VerifyEmail).Methods(http.MethodGet)
	auth.HandleFunc("/refresh-token", h.Refresh).Methods(http.MethodPost)

	auth.Handle("/me", guard(http.HandlerFunc(h.Me))).Methods(http.MethodGet)
	auth.Handle("/update-password", guard(http.HandlerFunc(h.UpdatePassword))).Methods(http.MethodPut)
	auth.Handle("/logout", guard(http.HandlerFunc(h.Logout))).Methods(http.MethodPost)
	auth.Handle("/logout-all", guard(http.HandlerFunc(h.LogoutAll))).Methods(http.MethodPost)

	return r
}
