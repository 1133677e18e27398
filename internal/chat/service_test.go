package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mateoias/lingochat/internal/domain"
)

// stubModel returns a canned reply or error and records the prompts it
// was called with.
type stubModel struct {
	reply   string
	err     error
	prompts [][]domain.Message
}

func (m *stubModel) Complete(_ context.Context, messages []domain.Message) (string, error) {
	m.prompts = append(m.prompts, messages)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func newTestService(t *testing.T, model *stubModel) *Service {
	t.Helper()
	instructions, err := LoadInstructions()
	if err != nil {
		t.Fatalf("LoadInstructions failed: %v", err)
	}
	return NewService(model, instructions, nil, time.Second)
}

func TestSubmitTurnHappyPath(t *testing.T) {
	model := &stubModel{reply: "¡Hola! ¿Cómo estás?"}
	svc := newTestService(t, model)
	s := NewSession("a@x.com", testBackground())

	reply, err := svc.SubmitTurn(context.Background(), s, "Hola", "")
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}
	if reply != "¡Hola! ¿Cómo estás?" {
		t.Errorf("Expected stub reply, got %q", reply)
	}

	got := s.Transcript()
	want := []domain.Message{
		{Role: domain.RoleUser, Content: "Hola"},
		{Role: domain.RoleAssistant, Content: "¡Hola! ¿Cómo estás?"},
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d messages, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Message %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSubmitTurnModelFailureKeepsUserTurn(t *testing.T) {
	model := &stubModel{err: fmt.Errorf("upstream exploded")}
	svc := newTestService(t, model)
	s := NewSession("a@x.com", testBackground())

	_, err := svc.SubmitTurn(context.Background(), s, "Hello", "")
	if !errors.Is(err, domain.ErrModelCallFailed) {
		t.Fatalf("Expected ErrModelCallFailed, got %v", err)
	}

	got := s.Transcript()
	if len(got) != 1 {
		t.Fatalf("Expected only the user turn, got %d messages", len(got))
	}
	if got[0].Role != domain.RoleUser || got[0].Content != "Hello" {
		t.Errorf("Expected user turn preserved, got %+v", got[0])
	}
}

func TestSubmitTurnEmptyInput(t *testing.T) {
	model := &stubModel{reply: "unused"}
	svc := newTestService(t, model)
	s := NewSession("a@x.com", testBackground())

	_, err := svc.SubmitTurn(context.Background(), s, "   ", "")
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("Expected ErrEmptyInput, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected transcript unchanged, got %d messages", s.Len())
	}
	if len(model.prompts) != 0 {
		t.Errorf("Expected no model call for empty input, got %d", len(model.prompts))
	}
}

func TestSubmitTurnNilSession(t *testing.T) {
	svc := newTestService(t, &stubModel{reply: "unused"})

	_, err := svc.SubmitTurn(context.Background(), nil, "Hola", "")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("Expected ErrUnauthenticated, got %v", err)
	}
}

func TestSubmitTurnPromptHasNoPersonalizationForFreshUser(t *testing.T) {
	model := &stubModel{reply: "ok"}
	svc := newTestService(t, model)
	s := NewSession("a@x.com", testBackground())

	if _, err := svc.SubmitTurn(context.Background(), s, "Hola", ""); err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	if len(model.prompts) != 1 {
		t.Fatalf("Expected one model call, got %d", len(model.prompts))
	}
	system := model.prompts[0][0]
	if system.Role != domain.RoleSystem {
		t.Fatalf("Expected system message first, got %s", system.Role)
	}
	if strings.Contains(system.Content, "personal information") {
		t.Errorf("Expected no personalization block in system message, got:\n%s", system.Content)
	}
}

func TestSubmitTurnTrailingReminderNotPersisted(t *testing.T) {
	model := &stubModel{reply: "ok"}
	svc := newTestService(t, model)
	s := NewSession("a@x.com", testBackground())

	if _, err := svc.SubmitTurn(context.Background(), s, "Hola", ""); err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	prompt := model.prompts[0]
	last := prompt[len(prompt)-1]
	if last.Role != domain.RoleUser || !strings.Contains(last.Content, "short") {
		t.Errorf("Expected trailing reminder in prompt, got %+v", last)
	}
	for _, m := range s.Transcript() {
		if m.Content == last.Content {
			t.Error("Expected reminder to stay out of the transcript")
		}
	}
}
