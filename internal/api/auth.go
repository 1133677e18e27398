package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mateoias/lingochat/internal/chat"
	"github.com/mateoias/lingochat/internal/domain"
	"github.com/mateoias/lingochat/internal/identity"
)

type signupRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	NativeLang string `json:"nativeLang"`
	TargetLang string `json:"targetLang"`
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	NativeLang string `json:"nativeLang"`
	TargetLang string `json:"targetLang"`
}

type authResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Greeting string `json:"greeting,omitempty"`
}

// Signup registers a new user and logs them straight in with a fresh
// conversation session.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if err := h.users.Create(r.Context(), req.Email, req.Password, req.NativeLang, req.TargetLang); err != nil {
		DomainError(w, err)
		return
	}
	slog.Info("user created", "user", req.Email)

	token, err := h.startSession(r, req.Email, req.NativeLang, req.TargetLang)
	if err != nil {
		DomainError(w, err)
		return
	}
	identity.SetSessionCookie(w, token, h.isDev)

	JSON(w, http.StatusOK, authResponse{
		Success:  true,
		Message:  "Account created",
		Greeting: chat.Greeting,
	})
}

// Login verifies credentials and starts a conversation session,
// replacing any previous one for the same user.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	ok, err := h.users.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		DomainError(w, err)
		return
	}
	if !ok {
		DomainError(w, domain.ErrInvalidCredentials)
		return
	}

	token, err := h.startSession(r, req.Email, req.NativeLang, req.TargetLang)
	if err != nil {
		DomainError(w, err)
		return
	}
	identity.SetSessionCookie(w, token, h.isDev)

	slog.Info("login successful", "user", req.Email)
	JSON(w, http.StatusOK, authResponse{
		Success:  true,
		Message:  "Login successful",
		Greeting: chat.Greeting,
	})
}

// Logout ends the active session and clears the cookie. Logging out
// without a session is not an error.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := identity.TokenFromContext(r.Context()); token != "" {
		h.sessions.End(token)
	}
	identity.ClearSessionCookie(w, h.isDev)
	JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// startSession derives a background from the stored record plus the
// supplied language pair and registers a fresh session.
func (h *Handler) startSession(r *http.Request, email, nativeLang, targetLang string) (string, error) {
	rec, err := h.users.Get(r.Context(), email)
	if err != nil {
		return "", err
	}
	bg := domain.NewBackground(rec, nativeLang, targetLang)
	return h.sessions.Start(chat.NewSession(email, bg)), nil
}
