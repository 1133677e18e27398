package speech

import (
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestVoiceForKnownLanguages(t *testing.T) {
	cases := map[string]openai.SpeechVoice{
		"en": openai.VoiceAlloy,
		"es": openai.VoiceNova,
		"fr": openai.VoiceShimmer,
		"de": openai.VoiceOnyx,
	}
	for lang, want := range cases {
		if got := VoiceFor(lang); got != want {
			t.Errorf("VoiceFor(%q): expected %s, got %s", lang, want, got)
		}
	}
}

func TestVoiceForFallsBackToDefault(t *testing.T) {
	for _, lang := range []string{"", "xx", "klingon"} {
		if got := VoiceFor(lang); got != DefaultVoice {
			t.Errorf("VoiceFor(%q): expected default voice, got %s", lang, got)
		}
	}
}

func TestVoiceForIgnoresRegionAndCase(t *testing.T) {
	if got := VoiceFor("es-MX"); got != openai.VoiceNova {
		t.Errorf("VoiceFor(es-MX): expected region suffix ignored, got %s", got)
	}
	if got := VoiceFor(" ES "); got != openai.VoiceNova {
		t.Errorf("VoiceFor(' ES '): expected case/space insensitive, got %s", got)
	}
	if got := VoiceFor("pt_BR"); got != openai.VoiceEcho {
		t.Errorf("VoiceFor(pt_BR): expected underscore suffix ignored, got %s", got)
	}
}
