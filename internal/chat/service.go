package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mateoias/lingochat/internal/domain"
	"github.com/mateoias/lingochat/internal/llm"
)

// DefaultModelTimeout bounds a single model call. Expiry surfaces as
// ErrModelCallFailed.
const DefaultModelTimeout = 30 * time.Second

// Service orchestrates a chat turn: validate input, append the user
// turn, assemble the prompt, call the model, append the reply.
type Service struct {
	model        llm.ChatModel
	instructions *Instructions
	selector     InstructionSelector
	modelTimeout time.Duration
}

// NewService wires the orchestrator. A nil selector means the caller's
// requested instruction is used as-is; a zero timeout means
// DefaultModelTimeout.
func NewService(model llm.ChatModel, instructions *Instructions, selector InstructionSelector, modelTimeout time.Duration) *Service {
	if selector == nil {
		selector = FixedSelector{}
	}
	if modelTimeout <= 0 {
		modelTimeout = DefaultModelTimeout
	}
	return &Service{
		model:        model,
		instructions: instructions,
		selector:     selector,
		modelTimeout: modelTimeout,
	}
}

// SubmitTurn handles one inbound user turn for the given session and
// returns the assistant reply.
//
// If the model call fails the already-appended user turn stays in the
// transcript: the user's input is never lost, only the reply may be
// missing.
func (s *Service) SubmitTurn(ctx context.Context, session *Session, text, instructionName string) (string, error) {
	if session == nil {
		return "", domain.ErrUnauthenticated
	}
	if err := session.AppendUserTurn(text); err != nil {
		return "", err
	}

	name := s.selector.Select(ctx, instructionName, session.Transcript())
	prompt := Assemble(session.Background(), session.Transcript(), s.instructions.Get(name))

	callCtx, cancel := context.WithTimeout(ctx, s.modelTimeout)
	defer cancel()

	reply, err := s.model.Complete(callCtx, prompt)
	if err != nil {
		slog.Error("model call failed", "user", session.Email(), "error", err)
		return "", fmt.Errorf("%w: %v", domain.ErrModelCallFailed, err)
	}

	session.AppendAssistantTurn(reply)
	return reply, nil
}
