package stt

import "strings"

const defaultLocalBaseURL = "http://localhost:8178"

// LocalSTTConfig points at a self-hosted Whisper server exposing the
// OpenAI-compatible /v1/audio/transcriptions route.
type LocalSTTConfig struct {
	BaseURL string
	Model   string
}

// NewLocalSTT needs no API key; the server ignores the model name unless it
// hosts several.
func NewLocalSTT(cfg LocalSTTConfig) *OpenAISTT {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultLocalBaseURL
	}
	return NewOpenAISTT(OpenAISTTConfig{
		BaseURL: base + "/v1",
		Model:   cfg.Model,
		Name:    "local-whisper",
	})
}
