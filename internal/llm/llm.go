// Package llm provides the language-model collaborator interface and
// its OpenAI-backed implementation.
package llm

import (
	"context"

	"github.com/mateoias/lingochat/internal/domain"
)

// ChatModel generates a reply for an ordered sequence of role-tagged
// messages. Implementations are expected to be safe for concurrent use.
type ChatModel interface {
	Complete(ctx context.Context, messages []domain.Message) (string, error)
}
