package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	authkit "github.com/smartmailhq/authkit"
	"github.com/smartmailhq/authkit/account"
	"github.com/smartmailhq/authkit/middleware"
)

// Handler adapts the engine's flows to HTTP endpoints.
type Handler struct {
	engine *authkit.Engine
}

func NewHandler(engine *authkit.Engine) *Handler {
	return &Handler{engine: engine}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// authData is the success payload for flows that establish a session.
type authData struct {
	User         account.Public    `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	TokenInfo    authkit.TokenInfo `json:"tokenInfo"`
}

func newAuthData(res *authkit.AuthResult) authData {
	return authData{
		User:         res.Account,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		TokenInfo:    res.TokenInfo,
	}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.engine.Signup(r.Context(), authkit.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "User registered successfully. Please check your email to verify your account.", newAuthData(&res.AuthResult))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.engine.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Login successful", newAuthData(res))
}

// Refresh accepts the refresh token from the request body or the
// X-Refresh-Token header.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Refresh-Token")
	if token == "" {
		var req refreshRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		token = req.RefreshToken
	}
	if token == "" {
		writeFailure(w, http.StatusUnauthorized, "Refresh token is required", nil)
		return
	}

	res, err := h.engine.Refresh(r.Context(), token)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Token refreshed successfully", newAuthData(res))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sum, ok := middleware.SummaryFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Not authorized", nil)
		return
	}

	token := r.Header.Get("X-Refresh-Token")
	if token == "" {
		var req refreshRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		token = req.RefreshToken
	}

	if err := h.engine.Logout(r.Context(), sum.AccountID, token); err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	sum, ok := middleware.SummaryFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Not authorized", nil)
		return
	}

	if err := h.engine.LogoutAll(r.Context(), sum.AccountID); err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Logged out from all devices successfully", nil)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sum, ok := middleware.SummaryFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Not authorized", nil)
		return
	}

	pub, err := h.engine.GetAccount(r.Context(), sum.AccountID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{"user": pub})
}

// ForgotPassword always answers identically so the response does not reveal
// whether the email is registered. Token delivery (email) is the host
// application's concern; the engine returns the raw token to it, not here.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.engine.ForgotPassword(r.Context(), req.Email); err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "If an account with that email exists, a password reset link has been sent.", nil)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token := mux.Vars(r)["token"]
	if err := h.engine.ResetPassword(r.Context(), token, req.Password); err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password reset successful", nil)
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if err := h.engine.VerifyEmail(r.Context(), token); err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Email verified successfully", nil)
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	sum, ok := middleware.SummaryFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Not authorized", nil)
		return
	}

	var req updatePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.engine.ChangePassword(r.Context(), sum.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password updated successfully", nil)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "OK", nil)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		writeFailure(w, http.StatusBadRequest, "Request body is required", nil)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}

// writeError maps engine sentinels to HTTP statuses and envelopes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *account.ValidationError
	if errors.As(err, &verr) {
		writeFailure(w, http.StatusBadRequest, "Validation failed", verr.Fields)
		return
	}

	switch {
	case errors.Is(err, authkit.ErrInvalidCredentials),
		errors.Is(err, authkit.ErrAccountDeactivated),
		errors.Is(err, authkit.ErrTokenExpired),
		errors.Is(err, authkit.ErrTokenInvalid),
		errors.Is(err, authkit.ErrSessionNotFound):
		writeFailure(w, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, authkit.ErrEmailTaken),
		errors.Is(err, authkit.ErrResetTokenInvalid),
		errors.Is(err, authkit.ErrVerificationTokenInvalid):
		writeFailure(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, authkit.ErrAccountNotFound):
		writeFailure(w, http.StatusNotFound, err.Error(), nil)
	default:
		writeFailure(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}
