package stt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/examiner/internal/config"
)

func newWhisperServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(ts.Close)
	return ts
}

func TestOpenAISTT_TranscribeSendsMultipartText(t *testing.T) {
	audio := []byte(strings.Repeat("x", 256))

	ts := newWhisperServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if !assert.NoError(t, r.ParseMultipartForm(10<<20)) {
			return
		}
		assert.Equal(t, "whisper-large-v3", r.FormValue("model"))
		assert.Equal(t, "text", r.FormValue("response_format"))
		assert.Equal(t, "en", r.FormValue("language"))

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		assert.Equal(t, "input.webm", header.Filename)
		got, _ := io.ReadAll(file)
		assert.Equal(t, audio, got)

		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "I like reading books.\n")
	})

	p := NewOpenAISTT(OpenAISTTConfig{
		APIKey:  "test-key",
		BaseURL: ts.URL + "/v1",
		Model:   "whisper-large-v3",
		Name:    "groq-whisper",
	})

	resp, err := p.Transcribe(context.Background(), TranscriptionRequest{Audio: audio, Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "I like reading books.\n", resp.Text)
	assert.Equal(t, "groq-whisper", resp.Provider)
	assert.Equal(t, "whisper-large-v3", resp.Model)
}

func TestOpenAISTT_TranscribeProviderError(t *testing.T) {
	ts := newWhisperServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`)
	})

	p := NewOpenAISTT(OpenAISTTConfig{APIKey: "bad", BaseURL: ts.URL + "/v1"})

	_, err := p.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte("abc")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai-whisper transcription")
}

func TestLocalSTTUsesWhisperCppServer(t *testing.T) {
	var hits int
	ts := newWhisperServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		io.WriteString(w, "hello")
	})

	p := NewLocalSTT(LocalSTTConfig{BaseURL: ts.URL})
	assert.Equal(t, "local-whisper", p.Name())

	resp, err := p.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte("abc")})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, 1, hits)
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(config.STTConfig{Backend: "groq"})
	require.True(t, errors.Is(err, ErrNotConfigured))

	_, err = NewProvider(config.STTConfig{Backend: "openai"})
	require.True(t, errors.Is(err, ErrNotConfigured))

	p, err := NewProvider(config.STTConfig{Backend: "groq", GroqKey: "gsk"})
	require.NoError(t, err)
	assert.Equal(t, "groq-whisper", p.Name())

	p, err = NewProvider(config.STTConfig{Backend: "local"})
	require.NoError(t, err)
	assert.Equal(t, "local-whisper", p.Name())

	_, err = NewProvider(config.STTConfig{Backend: "deepgram"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotConfigured))
}
