package llm

import (
	"context"
	"fmt"

	"github.com/mateoias/lingochat/internal/domain"
	"github.com/sashabaranov/go-openai"
)

// DefaultModel is the chat completion model used unless configured
// otherwise.
const DefaultModel = openai.GPT4oMini

// OpenAIClient implements ChatModel on the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client for the given API key. baseURL and
// model may be empty to use the SDK defaults.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Complete sends the assembled messages and returns the generated text.
func (c *OpenAIClient) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAI(messages),
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAI(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}
