package api

import (
	"log/slog"
	"net/http"

	"github.com/mateoias/lingochat/internal/chat"
	"github.com/mateoias/lingochat/internal/chatlog"
	"github.com/mateoias/lingochat/internal/domain"
	"github.com/mateoias/lingochat/internal/identity"
)

type chatRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode,omitempty"` // base instruction name, e.g. "conversation"
}

type chatResponse struct {
	Response string `json:"response"`
}

type statusResponse struct {
	Authenticated   bool                       `json:"authenticated"`
	Background      *domain.UserBackground     `json:"background,omitempty"`
	Personalization domain.PersonalizationBlob `json:"personalization,omitempty"`
	TranscriptLen   int                        `json:"transcript_length"`
}

type speakRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// Chat submits one user turn to the orchestrator and returns the
// assistant reply. The session's turn lock serializes concurrent
// requests for the same session.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token := identity.TokenFromContext(r.Context())
	var reply string
	var email string
	var turnErr error
	found := h.sessions.WithSession(token, func(s *chat.Session) {
		email = s.Email()
		reply, turnErr = h.chatService.SubmitTurn(r.Context(), s, req.Message, req.Mode)
	})
	if !found {
		DomainError(w, domain.ErrUnauthenticated)
		return
	}
	if turnErr != nil {
		DomainError(w, turnErr)
		return
	}

	if h.chatLog != nil {
		h.chatLog.Log(chatlog.Event{User: email, Role: string(domain.RoleUser), Content: req.Message, Mode: req.Mode})
		h.chatLog.Log(chatlog.Event{User: email, Role: string(domain.RoleAssistant), Content: reply, Mode: req.Mode})
	}

	JSON(w, http.StatusOK, chatResponse{Response: reply})
}

// ResetChat clears the transcript; the background snapshot survives.
func (h *Handler) ResetChat(w http.ResponseWriter, r *http.Request) {
	token := identity.TokenFromContext(r.Context())
	found := h.sessions.WithSession(token, func(s *chat.Session) {
		s.Reset()
	})
	if !found {
		DomainError(w, domain.ErrUnauthenticated)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Chat history cleared.",
		"greeting": chat.Greeting,
	})
}

// SavePersonalization persists the onboarding blob and refreshes the
// active session's background so the very next prompt reflects it.
// Session state is only touched under the turn lock; a turn in flight
// finishes before the background swaps.
func (h *Handler) SavePersonalization(w http.ResponseWriter, r *http.Request) {
	token := identity.TokenFromContext(r.Context())
	var email, nativeLang, targetLang string
	found := h.sessions.WithSession(token, func(s *chat.Session) {
		email = s.Email()
		if bg := s.Background(); bg != nil {
			nativeLang, targetLang = bg.NativeLang, bg.TargetLang
		}
	})
	if !found {
		DomainError(w, domain.ErrUnauthenticated)
		return
	}

	var blob domain.PersonalizationBlob
	if err := decodeBody(r, &blob); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.users.UpdatePersonalization(r.Context(), email, blob); err != nil {
		DomainError(w, err)
		return
	}

	rec, err := h.users.Get(r.Context(), email)
	if err != nil {
		DomainError(w, err)
		return
	}
	h.sessions.WithSession(token, func(s *chat.Session) {
		s.SetBackground(domain.NewBackground(rec, nativeLang, targetLang))
	})

	slog.Info("personalization saved", "user", email)
	JSON(w, http.StatusOK, map[string]any{"success": true})
}

// Status reports whether the caller has a live session and, if so, a
// snapshot of its state taken under the turn lock.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	token := identity.TokenFromContext(r.Context())
	var resp statusResponse
	found := h.sessions.WithSession(token, func(s *chat.Session) {
		bg := s.Background()
		resp = statusResponse{
			Authenticated: true,
			Background:    bg,
			TranscriptLen: s.Len(),
		}
		if bg != nil {
			resp.Personalization = bg.Personalization
		}
	})
	if !found {
		JSON(w, http.StatusOK, statusResponse{Authenticated: false})
		return
	}
	JSON(w, http.StatusOK, resp)
}

// Speak synthesizes text to audio using the voice mapped to the
// requested language. Requires a live session and a configured
// synthesizer.
func (h *Handler) Speak(w http.ResponseWriter, r *http.Request) {
	if h.synthesizer == nil {
		Error(w, http.StatusNotImplemented, "speech synthesis is not configured")
		return
	}

	token := identity.TokenFromContext(r.Context())
	var email, defaultLang string
	found := h.sessions.WithSession(token, func(s *chat.Session) {
		email = s.Email()
		if bg := s.Background(); bg != nil {
			defaultLang = bg.TargetLang
		}
	})
	if !found {
		DomainError(w, domain.ErrUnauthenticated)
		return
	}

	var req speakRequest
	if err := decodeBody(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		DomainError(w, domain.ErrEmptyInput)
		return
	}
	if req.Lang == "" {
		req.Lang = defaultLang
	}

	audio, err := h.synthesizer.Synthesize(r.Context(), req.Text, req.Lang)
	if err != nil {
		slog.Error("speech synthesis failed", "user", email, "error", err)
		Error(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		slog.Warn("failed to write audio response", "error", err)
	}
}
