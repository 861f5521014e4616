package examiner

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TurnRecord is the accounting view of a finished turn. It carries no
// transcript, history or reply text.
type TurnRecord struct {
	TurnID           uuid.UUID `json:"turn_id"`
	Outcome          Outcome   `json:"outcome"`
	RepairFallback   bool      `json:"repair_fallback"`
	ExaminerFallback bool      `json:"examiner_fallback"`
	AudioBytes       int       `json:"audio_bytes"`

	STTProvider string `json:"stt_provider,omitempty"`
	STTModel    string `json:"stt_model,omitempty"`
	LLMProvider string `json:"llm_provider,omitempty"`
	LLMModel    string `json:"llm_model,omitempty"`

	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`

	TranscribeMs int64 `json:"transcribe_ms"`
	RepairMs     int64 `json:"repair_ms"`
	ExaminerMs   int64 `json:"examiner_ms"`
	TotalMs      int64 `json:"total_ms"`

	PronunciationFlags int       `json:"pronunciation_flags"`
	CreatedAt          time.Time `json:"created_at"`
}

// Observer receives a record after every turn. Errors are logged by the
// processor and never change the turn result.
type Observer interface {
	ObserveTurn(ctx context.Context, rec TurnRecord) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, rec TurnRecord) error

func (f ObserverFunc) ObserveTurn(ctx context.Context, rec TurnRecord) error {
	return f(ctx, rec)
}
