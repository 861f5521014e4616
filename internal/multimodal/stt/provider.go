package stt

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikhilbhutani/examiner/internal/config"
)

// ErrNotConfigured is returned when the selected backend needs a credential
// that was not provided.
var ErrNotConfigured = errors.New("stt backend not configured")

// TranscriptionRequest holds the parameters for audio transcription.
type TranscriptionRequest struct {
	Audio    []byte `json:"-"`
	Filename string `json:"filename,omitempty"` // hints the container format to the provider
	Language string `json:"language,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// STTProvider is the interface for speech-to-text backends.
type STTProvider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}

// NewProvider builds the backend selected by cfg.Backend.
func NewProvider(cfg config.STTConfig) (STTProvider, error) {
	switch cfg.Backend {
	case "groq", "":
		if cfg.GroqKey == "" {
			return nil, fmt.Errorf("%w: GROQ_API_KEY is not set", ErrNotConfigured)
		}
		return NewGroqSTT(cfg.GroqKey, cfg.Model), nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrNotConfigured)
		}
		return NewOpenAISTT(OpenAISTTConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil
	case "local":
		return NewLocalSTT(LocalSTTConfig{BaseURL: cfg.LocalBaseURL, Model: cfg.Model}), nil
	default:
		return nil, fmt.Errorf("unknown stt backend %q", cfg.Backend)
	}
}
