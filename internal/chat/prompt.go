package chat

import (
	"fmt"
	"strings"

	"github.com/mateoias/lingochat/internal/domain"
	"github.com/mateoias/lingochat/internal/personalization"
)

// reminder is the synthetic trailing user message appended to every
// assembled prompt. It steers the model without ever being persisted
// into the transcript.
const reminder = "Remember to make your response short so I have a chance to speak more."

// steeringClause tells the model how to split languages between
// conversation and grammar help. It closes every system message.
func steeringClause(bg *domain.UserBackground) string {
	target, native := "the target language", "the learner's native language"
	if bg != nil {
		if bg.TargetLang != "" {
			target = bg.TargetLang
		}
		if bg.NativeLang != "" {
			native = bg.NativeLang
		}
	}
	return fmt.Sprintf(
		"Use %s for the conversation and %s when answering grammar or vocabulary questions. Keep your responses short.",
		target, native)
}

// Assemble builds the exact message sequence sent to the model:
// one system message (personalization context, base instruction,
// steering clause), the transcript in append order, and the trailing
// reminder. It is total and deterministic; callers own the inputs and
// nothing here mutates them.
func Assemble(bg *domain.UserBackground, transcript []domain.Message, baseInstruction string) []domain.Message {
	var system strings.Builder
	if ctx := personalization.Build(bg); ctx != "" {
		system.WriteString(ctx)
		system.WriteString("\n\n")
	}
	system.WriteString(baseInstruction)
	system.WriteString("\n\n")
	system.WriteString(steeringClause(bg))

	messages := make([]domain.Message, 0, len(transcript)+2)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: system.String()})
	messages = append(messages, transcript...)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: reminder})
	return messages
}
