package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mateoias/lingochat/internal/domain"
	"github.com/mateoias/lingochat/internal/llm"
)

// InstructionSelector picks the base instruction name for a turn.
// The caller's requested name is an opaque policy input; selectors may
// honor it, ignore it, or refine it.
type InstructionSelector interface {
	Select(ctx context.Context, requested string, transcript []domain.Message) string
}

// FixedSelector honors the caller's requested instruction name as-is,
// falling back to the default for blank input. This is the shipped
// behavior.
type FixedSelector struct{}

func (FixedSelector) Select(_ context.Context, requested string, _ []domain.Message) string {
	if strings.TrimSpace(requested) == "" {
		return DefaultInstruction
	}
	return requested
}

// ClassifierSelector asks the model to label the conversation's intent
// (conversation, grammar, or confused) and uses that label as the
// instruction name. Classification failures fall back to the caller's
// requested name so a flaky classifier never blocks a turn.
type ClassifierSelector struct {
	Model llm.ChatModel
}

const classifierSystem = "You are an intent classifier. " +
	"Read the conversation so far and respond with just one word, the intent label. " +
	"The possible intents are: conversation, grammar, or confused. " +
	"Do not explain. Do not roleplay. Do not answer the user. Just return the intent as a single word."

const classifierQuestion = "What is the intent of this conversation so far? " +
	"Respond with exactly one word: conversation, grammar, confused"

var knownIntents = map[string]bool{
	"conversation": true,
	"grammar":      true,
	"confused":     true,
}

func (s ClassifierSelector) Select(ctx context.Context, requested string, transcript []domain.Message) string {
	prompt := make([]domain.Message, 0, len(transcript)+2)
	prompt = append(prompt, domain.Message{Role: domain.RoleSystem, Content: classifierSystem})
	prompt = append(prompt, transcript...)
	prompt = append(prompt, domain.Message{Role: domain.RoleUser, Content: classifierQuestion})

	label, err := s.Model.Complete(ctx, prompt)
	if err != nil {
		slog.Warn("intent classification failed, using requested instruction", "error", err)
		return FixedSelector{}.Select(ctx, requested, transcript)
	}

	label = strings.ToLower(strings.TrimSpace(label))
	if !knownIntents[label] {
		slog.Warn("intent classifier returned unknown label", "label", label)
		return FixedSelector{}.Select(ctx, requested, transcript)
	}
	return label
}
