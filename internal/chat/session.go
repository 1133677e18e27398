// Package chat implements the conversation core: per-user sessions,
// prompt assembly, and the turn orchestrator.
package chat

import (
	"strings"

	"github.com/mateoias/lingochat/internal/domain"
)

// Greeting is the canned opening line returned to clients at login and
// after a reset. It is presentation only and never enters the transcript.
const Greeting = "Hello, what would you like to talk about today?"

// Session holds one user's conversation state for the lifetime of an
// authenticated interaction: a background snapshot and an append-only
// transcript. It is not safe for concurrent use; the session registry
// serializes turns per session.
type Session struct {
	email      string
	background *domain.UserBackground
	transcript []domain.Message
}

// NewSession creates an active session with an empty transcript.
func NewSession(email string, bg *domain.UserBackground) *Session {
	return &Session{
		email:      email,
		background: bg,
	}
}

// Email returns the owning user's identifier.
func (s *Session) Email() string {
	return s.email
}

// Background returns the session's profile snapshot.
func (s *Session) Background() *domain.UserBackground {
	return s.background
}

// SetBackground replaces the profile snapshot. Used when the user saves
// personalization mid-session so the next prompt reflects it.
func (s *Session) SetBackground(bg *domain.UserBackground) {
	s.background = bg
}

// AppendUserTurn appends a user message. Empty or whitespace-only input
// is rejected with ErrEmptyInput and leaves the transcript untouched.
func (s *Session) AppendUserTurn(text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyInput
	}
	s.transcript = append(s.transcript, domain.Message{Role: domain.RoleUser, Content: text})
	return nil
}

// AppendAssistantTurn appends an assistant message. Model output is
// trusted as-is, so there is no validation.
func (s *Session) AppendAssistantTurn(text string) {
	s.transcript = append(s.transcript, domain.Message{Role: domain.RoleAssistant, Content: text})
}

// Reset clears the transcript. The background snapshot is retained
// unchanged, so any number of consecutive resets leaves the session in
// the same state as a single one.
func (s *Session) Reset() {
	s.transcript = s.transcript[:0]
}

// Transcript returns a copy of the message sequence in append order.
func (s *Session) Transcript() []domain.Message {
	out := make([]domain.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Len returns the number of messages in the transcript.
func (s *Session) Len() int {
	return len(s.transcript)
}
