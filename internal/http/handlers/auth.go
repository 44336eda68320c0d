package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hongminglow/marketplace-auth/internal/http/respond"
	"github.com/hongminglow/marketplace-auth/internal/middleware"
	"github.com/hongminglow/marketplace-auth/internal/models/dto"
	"github.com/hongminglow/marketplace-auth/internal/service"
)

const maxBodyBytes = 1 << 20

// Authenticator is the subset of service.AuthService used by the HTTP layer.
type Authenticator interface {
	Register(ctx context.Context, req dto.RegisterRequest) (service.AuthResult, error)
	Login(ctx context.Context, role, email, password string) (service.AuthResult, error)
	LoginWithPIN(ctx context.Context, role, pin string) (service.AuthResult, error)
	ForgotPassword(ctx context.Context, role, email string) (string, error)
	ResetPassword(ctx context.Context, role, email, otp, newPassword string) (string, error)
	SendVerificationOTP(ctx context.Context, role, email string) (string, error)
	VerifyEmailOTP(ctx context.Context, role, email, otp string) (string, error)
	middleware.SessionValidator
}

// AuthHandler exposes the auth operations for every role.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r *mux.Router) {
	api := r.PathPrefix("/api/auth").Subrouter()
	api.HandleFunc("/register", h.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/login/pin", h.handlePINLogin).Methods(http.MethodPost)
	api.HandleFunc("/password/forgot", h.handleForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/password/reset", h.handleResetPassword).Methods(http.MethodPost)
	api.HandleFunc("/email/send-otp", h.handleSendVerification).Methods(http.MethodPost)
	api.HandleFunc("/email/verify", h.handleVerifyEmail).Methods(http.MethodPost)
	api.Handle("/session", middleware.RequireSession(h.auth, http.HandlerFunc(h.handleSession))).Methods(http.MethodGet)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		fail(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Registration successful", dto.AuthResponse{Token: res.Token, Profile: res.Profile})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.auth.Login(r.Context(), req.Role, req.Email, req.Password)
	if err != nil {
		fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Login successful", dto.AuthResponse{Token: res.Token, Profile: res.Profile})
}

func (h *AuthHandler) handlePINLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.PINLoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.auth.LoginWithPIN(r.Context(), req.Role, req.PIN)
	if err != nil {
		fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Login successful", dto.AuthResponse{Token: res.Token, Profile: res.Profile})
}

func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	message(w, func() (string, error) { return h.auth.ForgotPassword(r.Context(), req.Role, req.Email) })
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	message(w, func() (string, error) {
		return h.auth.ResetPassword(r.Context(), req.Role, req.Email, req.OTP, req.NewPassword)
	})
}

func (h *AuthHandler) handleSendVerification(w http.ResponseWriter, r *http.Request) {
	var req dto.SendVerificationRequest
	if !decode(w, r, &req) {
		return
	}
	message(w, func() (string, error) { return h.auth.SendVerificationOTP(r.Context(), req.Role, req.Email) })
}

func (h *AuthHandler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if !decode(w, r, &req) {
		return
	}
	message(w, func() (string, error) { return h.auth.VerifyEmailOTP(r.Context(), req.Role, req.Email, req.OTP) })
}

func (h *AuthHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r.Context())
	if !ok {
		fail(w, service.ErrInvalidToken)
		return
	}
	respond.JSON(w, http.StatusOK, "Session is valid", dto.SessionResponse{Profile: session.Profile, Role: session.Role})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

// message writes operations whose success payload is only a message.
func message(w http.ResponseWriter, op func() (string, error)) {
	msg, err := op()
	if err != nil {
		fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, msg, nil)
}

func fail(w http.ResponseWriter, err error) {
	respond.Error(w, service.StatusCode(err), service.PublicMessage(err))
}
