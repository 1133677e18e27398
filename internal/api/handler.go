// Package api provides HTTP handlers for the lingochat API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mateoias/lingochat/internal/chat"
	"github.com/mateoias/lingochat/internal/chatlog"
	"github.com/mateoias/lingochat/internal/domain"
	"github.com/mateoias/lingochat/internal/session"
	"github.com/mateoias/lingochat/internal/speech"
	"github.com/mateoias/lingochat/internal/store"
)

// Handler bundles the dependencies shared by all HTTP handlers.
type Handler struct {
	users       store.UserStore
	sessions    *session.Manager
	chatService *chat.Service
	synthesizer speech.Synthesizer // nil when speech is disabled
	chatLog     chatlog.Logger
	isDev       bool
}

// NewHandler creates a Handler. synthesizer may be nil to disable the
// /speak endpoint; chatLog may be nil to disable turn logging.
func NewHandler(users store.UserStore, sessions *session.Manager, chatService *chat.Service, synthesizer speech.Synthesizer, chatLog chatlog.Logger, isDev bool) *Handler {
	return &Handler{
		users:       users,
		sessions:    sessions,
		chatService: chatService,
		synthesizer: synthesizer,
		chatLog:     chatLog,
		isDev:       isDev,
	}
}

// RegisterRoutes mounts all API routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/chat", h.Chat)
	r.Post("/reset_chat", h.ResetChat)
	r.Post("/save_personalization", h.SavePersonalization)
	r.Get("/status", h.Status)
	r.Post("/speak", h.Speak)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// DomainError maps a domain sentinel error onto its stable HTTP
// status/message pair. Unrecognized errors become a generic 500.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		Error(w, http.StatusBadRequest, "user already exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrUnauthenticated):
		Error(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, domain.ErrNotFound):
		Error(w, http.StatusNotFound, "user not found")
	case errors.Is(err, domain.ErrEmptyInput):
		Error(w, http.StatusBadRequest, "empty message")
	case errors.Is(err, domain.ErrModelCallFailed):
		Error(w, http.StatusBadGateway, "model call failed")
	case errors.Is(err, domain.ErrStoreIO):
		Error(w, http.StatusInternalServerError, "store failure")
	default:
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}
