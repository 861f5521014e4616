// Package examiner runs one spoken-exam turn: transcribe the recording,
// repair the transcript, ask the examiner model for feedback and the next
// question, and shape the reply.
//
// Every provider failure degrades to a documented sentinel value; ProcessTurn
// never returns an error.
package examiner

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/examiner/internal/llm"
	"github.com/nikhilbhutani/examiner/internal/multimodal/stt"
	"github.com/nikhilbhutani/examiner/pkg/tokenizer"
)

const (
	DefaultMinAudioBytes = 100
	DefaultLanguage      = "en"
	audioFilename        = "input.webm"
)

type Processor struct {
	transcriber   stt.STTProvider
	gateway       llm.Gateway
	prompts       *PromptSet
	minAudioBytes int
	language      string
	observers     []Observer
}

type Option func(*Processor)

func WithPrompts(ps *PromptSet) Option {
	return func(p *Processor) {
		if ps != nil {
			p.prompts = ps
		}
	}
}

func WithMinAudioBytes(n int) Option {
	return func(p *Processor) { p.minAudioBytes = n }
}

func WithLanguage(lang string) Option {
	return func(p *Processor) {
		if lang != "" {
			p.language = lang
		}
	}
}

func WithObservers(obs ...Observer) Option {
	return func(p *Processor) { p.observers = append(p.observers, obs...) }
}

// NewProcessor wires a processor. transcriber and gateway may be nil when
// their credentials are missing; the affected steps then take their fallback.
func NewProcessor(transcriber stt.STTProvider, gateway llm.Gateway, opts ...Option) *Processor {
	p := &Processor{
		transcriber:   transcriber,
		gateway:       gateway,
		prompts:       DefaultPrompts(),
		minAudioBytes: DefaultMinAudioBytes,
		language:      DefaultLanguage,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessTurn runs the pipeline for one recording. history is the caller's
// conversation so far and is passed to the examiner verbatim.
func (p *Processor) ProcessTurn(ctx context.Context, audio []byte, history string) TurnResult {
	start := time.Now()
	rec := TurnRecord{
		TurnID:     uuid.New(),
		AudioBytes: len(audio),
		CreatedAt:  start.UTC(),
	}
	log := slog.With("turn_id", rec.TurnID.String())
	log.Info("turn received", "bytes", len(audio))

	res := p.run(ctx, log, audio, history, &rec)

	rec.Outcome = res.Outcome
	rec.RepairFallback = res.RepairFallback
	rec.ExaminerFallback = res.ExaminerFallback
	rec.PronunciationFlags = len(res.PronunciationFlags)
	rec.TotalMs = time.Since(start).Milliseconds()

	log.Info("turn finished",
		"outcome", res.Outcome,
		"repair_fallback", res.RepairFallback,
		"examiner_fallback", res.ExaminerFallback,
		"latency_ms", rec.TotalMs,
	)
	p.notify(ctx, log, rec)
	return res
}

func (p *Processor) run(ctx context.Context, log *slog.Logger, audio []byte, history string, rec *TurnRecord) TurnResult {
	s := p.prompts.Sentinels

	if len(audio) < p.minAudioBytes {
		log.Warn("audio below minimum size, skipping providers", "bytes", len(audio), "min_bytes", p.minAudioBytes)
		return TurnResult{
			Analyzed: s.Placeholder,
			Question: s.MicrophoneError,
			Outcome:  OutcomeEmptyAudio,
		}
	}

	raw, ok := p.transcribe(ctx, log, audio, rec)
	if !ok {
		return TurnResult{
			Analyzed: s.Placeholder,
			Question: s.NoTranscript,
			Outcome:  OutcomeNoTranscript,
		}
	}

	analyzed, repaired := p.repair(ctx, log, raw, rec)
	reply, answered := p.examine(ctx, log, history, analyzed, rec)
	parsed := SplitReply(reply, p.prompts.Separator)

	return TurnResult{
		Analyzed:           analyzed,
		Feedback:           parsed.Feedback,
		Question:           parsed.Question,
		Outcome:            OutcomeSuccess,
		RepairFallback:     !repaired,
		ExaminerFallback:   !answered,
		PronunciationFlags: ParsePronunciationFlags(analyzed),
	}
}

func (p *Processor) transcribe(ctx context.Context, log *slog.Logger, audio []byte, rec *TurnRecord) (string, bool) {
	if p.transcriber == nil {
		log.Error("transcriber not configured")
		return "", false
	}
	rec.STTProvider = p.transcriber.Name()

	start := time.Now()
	resp, err := p.transcriber.Transcribe(ctx, stt.TranscriptionRequest{
		Audio:    audio,
		Filename: audioFilename,
		Language: p.language,
	})
	rec.TranscribeMs = time.Since(start).Milliseconds()
	if err != nil {
		log.Error("transcription failed", "provider", rec.STTProvider, "error", err)
		return "", false
	}
	// Whisper answers silence with a bare newline; treat it like no text.
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		log.Warn("transcription returned no text", "provider", rec.STTProvider)
		return "", false
	}
	rec.STTModel = resp.Model

	log.Info("transcribed", "provider", rec.STTProvider, "chars", len(resp.Text), "latency_ms", rec.TranscribeMs)
	return resp.Text, true
}

// repair returns the corrected transcript, or raw unchanged and false when
// the correction pass is unavailable.
func (p *Processor) repair(ctx context.Context, log *slog.Logger, raw string, rec *TurnRecord) (string, bool) {
	promptText, err := p.prompts.RepairPrompt(raw)
	if err != nil {
		log.Error("render repair prompt", "error", err)
		return raw, false
	}

	start := time.Now()
	resp, err := p.chat(ctx, promptText)
	rec.RepairMs = time.Since(start).Milliseconds()
	if err != nil {
		log.Warn("transcript repair failed, using raw transcript", "error", err)
		return raw, false
	}
	p.account(rec, promptText, resp)

	fixed := strings.TrimSpace(resp.Content)
	if fixed == "" {
		log.Warn("transcript repair returned no text, using raw transcript")
		return raw, false
	}
	return fixed, true
}

// examine returns the examiner reply, or the canned fallback and false.
func (p *Processor) examine(ctx context.Context, log *slog.Logger, history, analyzed string, rec *TurnRecord) (string, bool) {
	fallback := p.prompts.Sentinels.ExaminerFallback

	promptText, err := p.prompts.ExaminerPrompt(history, analyzed)
	if err != nil {
		log.Error("render examiner prompt", "error", err)
		return fallback, false
	}

	start := time.Now()
	resp, err := p.chat(ctx, promptText)
	rec.ExaminerMs = time.Since(start).Milliseconds()
	if err != nil {
		log.Error("examiner call failed", "error", err)
		return fallback, false
	}
	p.account(rec, promptText, resp)

	if strings.TrimSpace(resp.Content) == "" {
		log.Error("examiner returned no text")
		return fallback, false
	}
	return resp.Content, true
}

func (p *Processor) chat(ctx context.Context, promptText string) (*llm.ChatResponse, error) {
	if p.gateway == nil {
		return nil, llm.ErrProviderNotConfigured
	}
	return p.gateway.Chat(ctx, llm.ChatRequest{Messages: llm.UserPrompt(promptText)})
}

// account adds one call's usage to rec. Usage is estimated from the text
// when the provider reports none.
func (p *Processor) account(rec *TurnRecord, promptText string, resp *llm.ChatResponse) {
	rec.LLMProvider = resp.Provider
	if resp.Model != "" {
		rec.LLMModel = resp.Model
	}

	in, out, cost := resp.InputTokens, resp.OutputTokens, resp.CostUSD
	if in == 0 && out == 0 {
		in, out = tokenizer.EstimateUsage(promptText, resp.Content)
		if cost == 0 {
			cost = llm.CalculateCost(resp.Model, in, out)
		}
	}
	rec.InputTokens += in
	rec.OutputTokens += out
	rec.CostUSD += cost
}

func (p *Processor) notify(ctx context.Context, log *slog.Logger, rec TurnRecord) {
	for _, o := range p.observers {
		if err := o.ObserveTurn(ctx, rec); err != nil {
			log.Warn("turn observer failed", "error", err)
		}
	}
}
