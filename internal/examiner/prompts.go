package examiner

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/nikhilbhutani/examiner/internal/prompt"
)

// ProtocolVersion is the prompt/reply protocol this package understands.
const ProtocolVersion = 1

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// PromptSet holds the prompt templates and sentinel strings of one protocol
// version.
type PromptSet struct {
	Version   int    `yaml:"version"`
	Separator string `yaml:"separator"`
	Repair    string `yaml:"repair"`
	Examiner  struct {
		System string `yaml:"system"`
		Turn   string `yaml:"turn"`
	} `yaml:"examiner"`
	Sentinels Sentinels `yaml:"sentinels"`
}

// Sentinels are the fixed strings substituted for provider output on failure.
type Sentinels struct {
	Placeholder      string `yaml:"placeholder"`
	MicrophoneError  string `yaml:"microphone_error"`
	NoTranscript     string `yaml:"no_transcript"`
	ExaminerFallback string `yaml:"examiner_fallback"`
}

var (
	defaultOnce    sync.Once
	defaultPrompts *PromptSet
)

// DefaultPrompts returns the embedded prompt set.
func DefaultPrompts() *PromptSet {
	defaultOnce.Do(func() {
		ps, err := ParsePrompts(defaultPromptsYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded prompts.yaml: %v", err))
		}
		defaultPrompts = ps
	})
	return defaultPrompts
}

// LoadPrompts reads a prompt set from path, or returns the embedded one
// when path is empty.
func LoadPrompts(path string) (*PromptSet, error) {
	if path == "" {
		return DefaultPrompts(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	ps, err := ParsePrompts(data)
	if err != nil {
		return nil, fmt.Errorf("prompts file %s: %w", path, err)
	}
	return ps, nil
}

// ParsePrompts decodes and validates a YAML prompt set.
func ParsePrompts(data []byte) (*PromptSet, error) {
	var ps PromptSet
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("decode prompts: %w", err)
	}
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return &ps, nil
}

func (ps *PromptSet) Validate() error {
	if ps.Version != ProtocolVersion {
		return fmt.Errorf("unsupported prompt protocol version %d (want %d)", ps.Version, ProtocolVersion)
	}
	if strings.TrimSpace(ps.Separator) == "" {
		return fmt.Errorf("separator is required")
	}
	if !strings.Contains(ps.Examiner.System, ps.Separator) {
		return fmt.Errorf("examiner.system must request the %q separator", ps.Separator)
	}
	if !strings.Contains(ps.Sentinels.ExaminerFallback, ps.Separator) {
		return fmt.Errorf("sentinels.examiner_fallback must contain the %q separator", ps.Separator)
	}

	if err := requireVars("repair", ps.Repair, "raw"); err != nil {
		return err
	}
	if err := requireVars("examiner.turn", ps.Examiner.Turn, "history", "user"); err != nil {
		return err
	}

	for name, v := range map[string]string{
		"placeholder":      ps.Sentinels.Placeholder,
		"microphone_error": ps.Sentinels.MicrophoneError,
		"no_transcript":    ps.Sentinels.NoTranscript,
	} {
		if v == "" {
			return fmt.Errorf("sentinels.%s is required", name)
		}
	}
	return nil
}

// RepairPrompt renders the transcript-correction prompt.
func (ps *PromptSet) RepairPrompt(raw string) (string, error) {
	return prompt.Render(ps.Repair, map[string]string{"raw": raw})
}

// ExaminerPrompt renders the examiner prompt. history and user are
// interpolated verbatim.
func (ps *PromptSet) ExaminerPrompt(history, user string) (string, error) {
	return prompt.Render(ps.Examiner.Turn, map[string]string{
		"system":  ps.Examiner.System,
		"history": history,
		"user":    user,
	})
}

func requireVars(field, tmpl string, names ...string) error {
	if err := prompt.Parse(tmpl).Require(names...); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}
