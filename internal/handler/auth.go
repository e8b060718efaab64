package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/handler/dto"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/service"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/session"
)

// AuthHandler handles registration, login, logout and session checks.
type AuthHandler struct {
	svc    *service.AuthService
	cookie session.CookieConfig
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, cookie session.CookieConfig, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{svc: svc, cookie: cookie, logger: logger}
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Register(r.Context(), service.RegisterInput{
		Username:      req.Username,
		Email:         req.Email,
		Password:      req.Password,
		PreviousToken: h.cookie.Token(r),
	})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.cookie.Set(w, res.Token)
	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Message: "User created successfully",
		User:    res.User.Public(),
	})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), service.LoginInput{
		Username:      req.Username,
		Password:      req.Password,
		PreviousToken: h.cookie.Token(r),
	})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.cookie.Set(w, res.Token)
	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Message: "Login successful",
		User:    res.User.Public(),
	})
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), h.cookie.Token(r)); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.cookie.Clear(w)
	writeMessage(w, http.StatusOK, "Logout successful")
}

// CheckAuth handles GET /api/check-auth. It never answers 401; a missing or
// expired session reports authenticated=false and clears the cookie.
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	token := h.cookie.Token(r)
	if token == "" {
		writeJSON(w, http.StatusOK, dto.CheckAuthResponse{Authenticated: false})
		return
	}

	user, err := h.svc.CheckAuth(r.Context(), token)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) || errors.Is(err, session.ErrSessionExpired) {
			h.cookie.Clear(w)
			writeJSON(w, http.StatusOK, dto.CheckAuthResponse{Authenticated: false})
			return
		}
		handleServiceError(h.logger, w, r, err)
		return
	}

	public := user.Public()
	writeJSON(w, http.StatusOK, dto.CheckAuthResponse{Authenticated: true, User: &public})
}
