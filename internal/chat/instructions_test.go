package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/mateoias/lingochat/internal/domain"
)

func TestLoadInstructions(t *testing.T) {
	instructions, err := LoadInstructions()
	if err != nil {
		t.Fatalf("LoadInstructions failed: %v", err)
	}

	for _, name := range []string{"conversation", "grammar", "confused"} {
		text := instructions.Get(name)
		if text == "" {
			t.Errorf("Expected non-empty instruction for %q", name)
		}
	}

	if !strings.Contains(instructions.Get("grammar"), "grammar") {
		t.Error("Expected grammar instruction to mention grammar")
	}
}

func TestInstructionsUnknownNameFallsBack(t *testing.T) {
	instructions, err := LoadInstructions()
	if err != nil {
		t.Fatalf("LoadInstructions failed: %v", err)
	}

	fallback := instructions.Get(DefaultInstruction)
	for _, name := range []string{"", "  ", "translation", "CONVERSATION"} {
		got := instructions.Get(name)
		if name == "CONVERSATION" {
			if got != fallback {
				t.Errorf("Expected case-insensitive lookup for %q", name)
			}
			continue
		}
		if got != fallback {
			t.Errorf("Get(%q): expected conversation fallback", name)
		}
	}
}

func TestFixedSelector(t *testing.T) {
	sel := FixedSelector{}

	if got := sel.Select(context.Background(), "grammar", nil); got != "grammar" {
		t.Errorf("Expected requested name honored, got %q", got)
	}
	if got := sel.Select(context.Background(), "  ", nil); got != DefaultInstruction {
		t.Errorf("Expected default for blank request, got %q", got)
	}
}

func TestClassifierSelector(t *testing.T) {
	transcript := []domain.Message{
		{Role: domain.RoleUser, Content: "Why is it 'la mesa' and not 'el mesa'?"},
	}

	t.Run("uses classifier label", func(t *testing.T) {
		sel := ClassifierSelector{Model: &stubModel{reply: " Grammar \n"}}
		if got := sel.Select(context.Background(), "conversation", transcript); got != "grammar" {
			t.Errorf("Expected grammar label, got %q", got)
		}
	})

	t.Run("falls back on classifier error", func(t *testing.T) {
		sel := ClassifierSelector{Model: &stubModel{err: context.DeadlineExceeded}}
		if got := sel.Select(context.Background(), "conversation", transcript); got != "conversation" {
			t.Errorf("Expected requested name on failure, got %q", got)
		}
	})

	t.Run("falls back on unknown label", func(t *testing.T) {
		sel := ClassifierSelector{Model: &stubModel{reply: "poetry"}}
		if got := sel.Select(context.Background(), "conversation", transcript); got != "conversation" {
			t.Errorf("Expected requested name for unknown label, got %q", got)
		}
	})
}
