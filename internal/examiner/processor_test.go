package examiner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/examiner/internal/llm"
	"github.com/nikhilbhutani/examiner/internal/multimodal/stt"
)

var validAudio = []byte(strings.Repeat("a", 512))

type stubTranscriber struct {
	text  string
	err   error
	nilOK bool // return (nil, nil)
	calls int
	last  stt.TranscriptionRequest
}

func (s *stubTranscriber) Name() string { return "stub-whisper" }

func (s *stubTranscriber) Transcribe(_ context.Context, req stt.TranscriptionRequest) (*stt.TranscriptionResponse, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	if s.nilOK {
		return nil, nil
	}
	return &stt.TranscriptionResponse{Text: s.text, Provider: "stub-whisper", Model: "whisper-large-v3"}, nil
}

// stubProvider answers repair prompts and examiner prompts independently.
type stubProvider struct {
	repair      string
	repairErr   error
	examiner    string
	examinerErr error

	repairCalls   int
	examinerCalls int
	prompts       []string
}

func (s *stubProvider) Name() string     { return "stub" }
func (s *stubProvider) Models() []string { return []string{"stub-model"} }

func (s *stubProvider) ChatCompletion(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	text := req.Messages[0].Content
	s.prompts = append(s.prompts, text)

	if strings.HasPrefix(text, "Act as a Contextual Corrector") {
		s.repairCalls++
		if s.repairErr != nil {
			return nil, s.repairErr
		}
		return &llm.ChatResponse{Provider: "stub", Model: req.Model, Content: s.repair, InputTokens: 10, OutputTokens: 5, CostUSD: 0.001}, nil
	}

	s.examinerCalls++
	if s.examinerErr != nil {
		return nil, s.examinerErr
	}
	return &llm.ChatResponse{Provider: "stub", Model: req.Model, Content: s.examiner, InputTokens: 20, OutputTokens: 8, CostUSD: 0.002}, nil
}

func (s *stubProvider) totalCalls() int { return s.repairCalls + s.examinerCalls }

func newTestProcessor(tr stt.STTProvider, p *stubProvider, opts ...Option) *Processor {
	gw := llm.NewGatewayWithProviders("stub", "stub-model", p)
	return NewProcessor(tr, gw, opts...)
}

func TestProcessTurn_ShortAudioMakesNoCalls(t *testing.T) {
	tr := &stubTranscriber{text: "hello"}
	p := &stubProvider{repair: "hello", examiner: "a ||| b"}
	proc := newTestProcessor(tr, p)

	for _, audio := range [][]byte{nil, {}, []byte("tiny"), []byte(strings.Repeat("x", 99))} {
		res := proc.ProcessTurn(context.Background(), audio, "history")

		assert.Equal(t, "...", res.Analyzed)
		assert.Equal(t, "", res.Feedback)
		assert.Equal(t, "Microphone error: file is empty.", res.Question)
		assert.Equal(t, OutcomeEmptyAudio, res.Outcome)
	}

	assert.Zero(t, tr.calls)
	assert.Zero(t, p.totalCalls())
}

func TestProcessTurn_ThresholdIsInclusive(t *testing.T) {
	tr := &stubTranscriber{text: "hello"}
	p := &stubProvider{repair: "hello", examiner: "a ||| b"}
	proc := newTestProcessor(tr, p)

	res := proc.ProcessTurn(context.Background(), []byte(strings.Repeat("x", 100)), "")
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 1, tr.calls)
}

func TestProcessTurn_TranscriptionFailureSkipsGeneration(t *testing.T) {
	tests := []struct {
		name string
		tr   *stubTranscriber
	}{
		{"provider error", &stubTranscriber{err: errors.New("401 invalid api key")}},
		{"empty text", &stubTranscriber{text: ""}},
		{"whitespace text", &stubTranscriber{text: " \n\t"}},
		{"nil response", &stubTranscriber{nilOK: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{repair: "x", examiner: "a ||| b"}
			res := newTestProcessor(tt.tr, p).ProcessTurn(context.Background(), validAudio, "")

			assert.Equal(t, "...", res.Analyzed)
			assert.Equal(t, "", res.Feedback)
			assert.Equal(t, "I didn't hear anything. Please check the logs.", res.Question)
			assert.Equal(t, OutcomeNoTranscript, res.Outcome)
			assert.Equal(t, 1, tt.tr.calls)
			assert.Zero(t, p.repairCalls)
			assert.Zero(t, p.examinerCalls)
		})
	}
}

func TestProcessTurn_MissingTranscriber(t *testing.T) {
	p := &stubProvider{repair: "x", examiner: "a ||| b"}
	res := NewProcessor(nil, llm.NewGatewayWithProviders("stub", "", p)).ProcessTurn(context.Background(), validAudio, "")

	assert.Equal(t, OutcomeNoTranscript, res.Outcome)
	assert.Equal(t, "I didn't hear anything. Please check the logs.", res.Question)
	assert.Zero(t, p.totalCalls())
}

func TestProcessTurn_TranscriberRequest(t *testing.T) {
	tr := &stubTranscriber{text: "hi"}
	p := &stubProvider{repair: "hi", examiner: "a ||| b"}
	newTestProcessor(tr, p).ProcessTurn(context.Background(), validAudio, "")

	assert.Equal(t, validAudio, tr.last.Audio)
	assert.Equal(t, "en", tr.last.Language)
	assert.Equal(t, "input.webm", tr.last.Filename)
}

func TestProcessTurn_RepairFailureKeepsRawTranscript(t *testing.T) {
	raw := "  i tink  the  weather is nice \n"
	tr := &stubTranscriber{text: raw}
	p := &stubProvider{repairErr: errors.New("quota exceeded"), examiner: "**Band: 5** ok ||| Why?"}

	res := newTestProcessor(tr, p).ProcessTurn(context.Background(), validAudio, "")

	assert.Equal(t, raw, res.Analyzed, "raw transcript must be passed through byte-for-byte")
	assert.True(t, res.RepairFallback)
	assert.False(t, res.ExaminerFallback)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, "Why?", res.Question)
	require.Len(t, p.prompts, 2)
	assert.Contains(t, p.prompts[1], "USER: "+raw)
}

func TestProcessTurn_EmptyRepairKeepsRawTranscript(t *testing.T) {
	tr := &stubTranscriber{text: "raw words"}
	p := &stubProvider{repair: "   ", examiner: "f ||| q"}

	res := newTestProcessor(tr, p).ProcessTurn(context.Background(), validAudio, "")
	assert.Equal(t, "raw words", res.Analyzed)
	assert.True(t, res.RepairFallback)
}

func TestProcessTurn_ExaminerFailureUsesCannedReply(t *testing.T) {
	tr := &stubTranscriber{text: "I like books"}
	p := &stubProvider{repair: "I like books.", examinerErr: errors.New("503 overloaded")}

	res := newTestProcessor(tr, p).ProcessTurn(context.Background(), validAudio, "")

	assert.Equal(t, "I like books.", res.Analyzed)
	assert.Equal(t, "Error", res.Feedback)
	assert.Equal(t, "I cannot connect to the brain right now.", res.Question)
	assert.True(t, res.ExaminerFallback)
	assert.False(t, res.RepairFallback)
}

func TestProcessTurn_UnconfiguredGateway(t *testing.T) {
	tr := &stubTranscriber{text: "hello there"}

	for name, gw := range map[string]llm.Gateway{
		"nil gateway":         nil,
		"no default provider": llm.NewGatewayWithProviders("gemini", "gemini-2.5-flash"),
	} {
		t.Run(name, func(t *testing.T) {
			res := NewProcessor(tr, gw).ProcessTurn(context.Background(), validAudio, "")

			assert.Equal(t, "hello there", res.Analyzed)
			assert.Equal(t, "Error", res.Feedback)
			assert.Equal(t, "I cannot connect to the brain right now.", res.Question)
			assert.True(t, res.RepairFallback)
			assert.True(t, res.ExaminerFallback)
			assert.True(t, res.Degraded())
		})
	}
}

func TestProcessTurn_Success(t *testing.T) {
	tr := &stubTranscriber{text: "i tink reading is fun"}
	p := &stubProvider{
		repair:   "  I [PRONUNCIATION ERROR: tink->think] reading is fun.\n",
		examiner: "**Band: 6** Good job ||| What is your opinion on X?",
	}
	history := "Examiner: What do you do in your free time?"

	res := newTestProcessor(tr, p).ProcessTurn(context.Background(), validAudio, history)

	assert.Equal(t, "I [PRONUNCIATION ERROR: tink->think] reading is fun.", res.Analyzed)
	assert.Equal(t, "**Band: 6** Good job", res.Feedback)
	assert.Equal(t, "What is your opinion on X?", res.Question)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.False(t, res.Degraded())
	assert.Equal(t, []PronunciationFlag{{Said: "tink", Intended: "think"}}, res.PronunciationFlags)

	require.Len(t, p.prompts, 2)
	assert.Contains(t, p.prompts[0], "Raw: 'i tink reading is fun'")
	assert.Contains(t, p.prompts[1], "HISTORY:\n"+history+"\nUSER: "+res.Analyzed)
}

func TestProcessTurn_ReplyWithoutSeparator(t *testing.T) {
	tr := &stubTranscriber{text: "hello"}
	p := &stubProvider{repair: "hello", examiner: "Just a question?"}

	res := newTestProcessor(tr, p).ProcessTurn(context.Background(), validAudio, "")
	assert.Equal(t, "", res.Feedback)
	assert.Equal(t, "Just a question?", res.Question)
	assert.False(t, res.ExaminerFallback)
}

func TestProcessTurn_Idempotent(t *testing.T) {
	tr := &stubTranscriber{text: "same words"}
	p := &stubProvider{repair: "Same words.", examiner: "**Band: 7** fine ||| Next?"}
	proc := newTestProcessor(tr, p)

	first := proc.ProcessTurn(context.Background(), validAudio, "h")
	second := proc.ProcessTurn(context.Background(), validAudio, "h")
	assert.Equal(t, first, second)
}

func TestProcessTurn_CustomMinAudioBytes(t *testing.T) {
	tr := &stubTranscriber{text: "hi"}
	p := &stubProvider{repair: "hi", examiner: "a ||| b"}

	res := newTestProcessor(tr, p, WithMinAudioBytes(1024)).ProcessTurn(context.Background(), validAudio, "")
	assert.Equal(t, OutcomeEmptyAudio, res.Outcome)
	assert.Zero(t, tr.calls)
}

func TestProcessTurn_NotifiesObservers(t *testing.T) {
	tr := &stubTranscriber{text: "i tink"}
	p := &stubProvider{repair: "I [PRONUNCIATION ERROR: tink->think].", examiner: "ok ||| next"}

	var records []TurnRecord
	collect := ObserverFunc(func(_ context.Context, rec TurnRecord) error {
		records = append(records, rec)
		return nil
	})
	failing := ObserverFunc(func(context.Context, TurnRecord) error { return errors.New("redis down") })

	proc := newTestProcessor(tr, p, WithObservers(failing, collect))
	res := proc.ProcessTurn(context.Background(), validAudio, "")
	proc.ProcessTurn(context.Background(), []byte("x"), "")

	assert.Equal(t, "next", res.Question, "observer errors must not affect the result")
	require.Len(t, records, 2)

	rec := records[0]
	assert.NotEqual(t, records[0].TurnID, records[1].TurnID)
	assert.Equal(t, OutcomeSuccess, rec.Outcome)
	assert.Equal(t, len(validAudio), rec.AudioBytes)
	assert.Equal(t, "stub-whisper", rec.STTProvider)
	assert.Equal(t, "whisper-large-v3", rec.STTModel)
	assert.Equal(t, "stub", rec.LLMProvider)
	assert.Equal(t, "stub-model", rec.LLMModel)
	assert.Equal(t, 30, rec.InputTokens)
	assert.Equal(t, 13, rec.OutputTokens)
	assert.InDelta(t, 0.003, rec.CostUSD, 1e-9)
	assert.Equal(t, 1, rec.PronunciationFlags)
	assert.False(t, rec.CreatedAt.IsZero())

	assert.Equal(t, OutcomeEmptyAudio, records[1].Outcome)
	assert.Equal(t, 1, records[1].AudioBytes)
	assert.Empty(t, records[1].STTProvider)
}

func TestTurnResultWire(t *testing.T) {
	res := TurnResult{Analyzed: "...", Question: "Microphone error: file is empty.", Outcome: OutcomeEmptyAudio}

	assert.Equal(t, WireResponse{
		UserTextAnalyzed: "...",
		ExaminerFeedback: "",
		ExaminerQuestion: "Microphone error: file is empty.",
	}, res.Wire())
}

// usagelessProvider answers every prompt with the same text and reports no
// token usage.
type usagelessProvider struct{ reply string }

func (u usagelessProvider) Name() string     { return "local" }
func (u usagelessProvider) Models() []string { return []string{"llama3"} }
func (u usagelessProvider) ChatCompletion(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{Provider: "local", Model: req.Model, Content: u.reply}, nil
}

func TestProcessTurn_EstimatesMissingUsage(t *testing.T) {
	var rec TurnRecord
	collect := ObserverFunc(func(_ context.Context, r TurnRecord) error {
		rec = r
		return nil
	})

	gw := llm.NewGatewayWithProviders("local", "llama3", usagelessProvider{reply: "fine ||| next question please"})
	proc := NewProcessor(&stubTranscriber{text: "i like books"}, gw, WithObservers(collect))
	proc.ProcessTurn(context.Background(), validAudio, "")

	assert.Greater(t, rec.InputTokens, 0)
	assert.Greater(t, rec.OutputTokens, 0)
	assert.Zero(t, rec.CostUSD, "unpriced model")
}
