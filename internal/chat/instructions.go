package chat

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed prompt/instructions.yaml
var instructionsYAML []byte

// DefaultInstruction is used when a caller names no instruction or an
// unknown one.
const DefaultInstruction = "conversation"

// Instructions is the catalog of task-specific base instructions
// (conversational practice, grammar explanation, confusion repair).
type Instructions struct {
	byName map[string]string
}

type instructionsFile struct {
	Instructions map[string]string `yaml:"instructions"`
}

// LoadInstructions parses the embedded instruction catalog.
func LoadInstructions() (*Instructions, error) {
	var file instructionsFile
	if err := yaml.Unmarshal(instructionsYAML, &file); err != nil {
		return nil, fmt.Errorf("parse instructions yaml: %w", err)
	}
	if _, ok := file.Instructions[DefaultInstruction]; !ok {
		return nil, fmt.Errorf("instruction catalog missing %q", DefaultInstruction)
	}
	byName := make(map[string]string, len(file.Instructions))
	for name, text := range file.Instructions {
		byName[name] = strings.TrimSpace(text)
	}
	return &Instructions{byName: byName}, nil
}

// Get returns the instruction text for name, falling back to the
// conversation instruction for unknown names.
func (i *Instructions) Get(name string) string {
	if text, ok := i.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return text
	}
	return i.byName[DefaultInstruction]
}

// Names returns the known instruction names.
func (i *Instructions) Names() []string {
	names := make([]string, 0, len(i.byName))
	for name := range i.byName {
		names = append(names, name)
	}
	return names
}
