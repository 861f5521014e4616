package stt

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	groqBaseURL = "https://api.groq.com/openai/v1"
	groqModel   = "whisper-large-v3"
)

// OpenAISTTConfig holds configuration for any OpenAI-compatible
// /audio/transcriptions endpoint.
type OpenAISTTConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.openai.com/v1"
	Model   string // default: "whisper-1"
	Name    string // default: "openai-whisper"
}

// OpenAISTT transcribes audio using OpenAI's Whisper API (or a compatible endpoint).
type OpenAISTT struct {
	cfg    OpenAISTTConfig
	client *openai.Client
}

// NewOpenAISTT creates an OpenAISTT with sensible defaults applied.
func NewOpenAISTT(cfg OpenAISTTConfig) *OpenAISTT {
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	if cfg.Name == "" {
		cfg.Name = "openai-whisper"
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: 300 * time.Second}

	return &OpenAISTT{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

// NewGroqSTT points the OpenAI client at Groq's hosted Whisper.
func NewGroqSTT(apiKey, model string) *OpenAISTT {
	if model == "" {
		model = groqModel
	}
	return NewOpenAISTT(OpenAISTTConfig{
		APIKey:  apiKey,
		BaseURL: groqBaseURL,
		Model:   model,
		Name:    "groq-whisper",
	})
}

func (o *OpenAISTT) Name() string { return o.cfg.Name }

// Transcribe uploads the audio bytes and requests a plain-text transcript.
func (o *OpenAISTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	filename := req.Filename
	if filename == "" {
		filename = "input.webm"
	}

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.cfg.Model,
		FilePath: filename,
		Reader:   bytes.NewReader(req.Audio),
		Prompt:   req.Prompt,
		Language: req.Language,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return nil, fmt.Errorf("%s transcription: %w", o.cfg.Name, err)
	}

	return &TranscriptionResponse{
		Text:     resp.Text,
		Provider: o.cfg.Name,
		Model:    o.cfg.Model,
	}, nil
}
