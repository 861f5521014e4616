package models

import (
	"time"

	"github.com/google/uuid"
)

// TurnUsageLog is one row of turn_usage_logs.
type TurnUsageLog struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	TurnID             uuid.UUID `json:"turn_id" db:"turn_id"`
	Outcome            string    `json:"outcome" db:"outcome"`
	RepairFallback     bool      `json:"repair_fallback" db:"repair_fallback"`
	ExaminerFallback   bool      `json:"examiner_fallback" db:"examiner_fallback"`
	AudioBytes         int       `json:"audio_bytes" db:"audio_bytes"`
	STTProvider        string    `json:"stt_provider" db:"stt_provider"`
	STTModel           string    `json:"stt_model" db:"stt_model"`
	LLMProvider        string    `json:"llm_provider" db:"llm_provider"`
	LLMModel           string    `json:"llm_model" db:"llm_model"`
	InputTokens        int       `json:"input_tokens" db:"input_tokens"`
	OutputTokens       int       `json:"output_tokens" db:"output_tokens"`
	CostUSD            float64   `json:"cost_usd" db:"cost_usd"`
	TranscribeMs       int64     `json:"transcribe_ms" db:"transcribe_ms"`
	RepairMs           int64     `json:"repair_ms" db:"repair_ms"`
	ExaminerMs         int64     `json:"examiner_ms" db:"examiner_ms"`
	TotalMs            int64     `json:"total_ms" db:"total_ms"`
	PronunciationFlags int       `json:"pronunciation_flags" db:"pronunciation_flags"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}
