// Package speech provides optional text-to-speech for assistant
// replies.
package speech

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Synthesizer turns text into audio for a given language code.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// DefaultVoice is used for language codes with no table entry.
const DefaultVoice = openai.VoiceAlloy

// voiceByLang is the fixed language-code to voice selection table.
var voiceByLang = map[string]openai.SpeechVoice{
	"en": openai.VoiceAlloy,
	"es": openai.VoiceNova,
	"fr": openai.VoiceShimmer,
	"de": openai.VoiceOnyx,
	"it": openai.VoiceFable,
	"pt": openai.VoiceEcho,
}

// VoiceFor returns the voice for a language code, falling back to
// DefaultVoice for unknown codes. Region suffixes ("es-MX") are
// ignored.
func VoiceFor(lang string) openai.SpeechVoice {
	code := strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	if voice, ok := voiceByLang[code]; ok {
		return voice
	}
	return DefaultVoice
}

// OpenAIClient implements Synthesizer on the OpenAI speech API.
type OpenAIClient struct {
	client *openai.Client
	model  openai.SpeechModel
}

// NewOpenAIClient builds a speech client. baseURL and model may be
// empty to use the SDK defaults.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	speechModel := openai.TTSModel1
	if model != "" {
		speechModel = openai.SpeechModel(model)
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  speechModel,
	}
}

// Synthesize returns audio bytes for text using the voice mapped to
// lang.
func (c *OpenAIClient) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: c.model,
		Input: text,
		Voice: VoiceFor(lang),
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI speech API error: %w", err)
	}
	defer func() { _ = resp.Close() }()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech audio: %w", err)
	}
	return audio, nil
}
