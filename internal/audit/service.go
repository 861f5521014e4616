package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/examiner/internal/examiner"
	"github.com/nikhilbhutani/examiner/internal/models"
)

// Service stores per-turn usage records. Transcripts, history and replies are
// never written.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// LogTurnUsage inserts one record. Re-delivered records for the same turn
// are ignored.
func (s *Service) LogTurnUsage(ctx context.Context, rec examiner.TurnRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO turn_usage_logs (turn_id, outcome, repair_fallback, examiner_fallback, audio_bytes,
		     stt_provider, stt_model, llm_provider, llm_model, input_tokens, output_tokens, cost_usd,
		     transcribe_ms, repair_ms, examiner_ms, total_ms, pronunciation_flags, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 ON CONFLICT (turn_id) DO NOTHING`,
		rec.TurnID, string(rec.Outcome), rec.RepairFallback, rec.ExaminerFallback, rec.AudioBytes,
		rec.STTProvider, rec.STTModel, rec.LLMProvider, rec.LLMModel, rec.InputTokens, rec.OutputTokens, rec.CostUSD,
		rec.TranscribeMs, rec.RepairMs, rec.ExaminerMs, rec.TotalMs, rec.PronunciationFlags, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert turn usage log: %w", err)
	}

	return nil
}

type UsageQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
	Outcome   string
	Limit     int
	Offset    int
}

func (s *Service) GetUsageLogs(ctx context.Context, q UsageQuery) ([]models.TurnUsageLog, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}

	query := `SELECT id, turn_id, outcome, repair_fallback, examiner_fallback, audio_bytes,
			         stt_provider, stt_model, llm_provider, llm_model, input_tokens, output_tokens, cost_usd,
			         transcribe_ms, repair_ms, examiner_ms, total_ms, pronunciation_flags, created_at
			  FROM turn_usage_logs WHERE true`
	var args []interface{}
	argIdx := 1

	if q.Outcome != "" {
		query += fmt.Sprintf(" AND outcome = $%d", argIdx)
		args = append(args, q.Outcome)
		argIdx++
	}
	if q.StartDate != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *q.StartDate)
		argIdx++
	}
	if q.EndDate != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *q.EndDate)
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query turn usage logs: %w", err)
	}
	defer rows.Close()

	var logs []models.TurnUsageLog
	for rows.Next() {
		var l models.TurnUsageLog
		if err := rows.Scan(&l.ID, &l.TurnID, &l.Outcome, &l.RepairFallback, &l.ExaminerFallback, &l.AudioBytes,
			&l.STTProvider, &l.STTModel, &l.LLMProvider, &l.LLMModel, &l.InputTokens, &l.OutputTokens, &l.CostUSD,
			&l.TranscribeMs, &l.RepairMs, &l.ExaminerMs, &l.TotalMs, &l.PronunciationFlags, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn usage log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

type UsageSummary struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Outcome      string  `json:"outcome"`
	TotalTurns   int     `json:"total_turns"`
	Fallbacks    int     `json:"fallbacks"`
	TotalTokens  int     `json:"total_tokens"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

func (s *Service) GetUsageSummary(ctx context.Context, startDate, endDate *time.Time) ([]UsageSummary, error) {
	query := `SELECT llm_provider, llm_model, outcome, COUNT(*) as total_turns,
			         COUNT(*) FILTER (WHERE repair_fallback OR examiner_fallback) as fallbacks,
			         COALESCE(SUM(input_tokens + output_tokens), 0) as total_tokens,
			         COALESCE(SUM(cost_usd), 0)::float8 as total_cost_usd,
			         COALESCE(AVG(total_ms), 0)::float8 as avg_latency_ms
			  FROM turn_usage_logs WHERE true`
	var args []interface{}
	argIdx := 1

	if startDate != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *startDate)
		argIdx++
	}
	if endDate != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *endDate)
		argIdx++
	}

	query += " GROUP BY llm_provider, llm_model, outcome ORDER BY total_turns DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage summary: %w", err)
	}
	defer rows.Close()

	var summaries []UsageSummary
	for rows.Next() {
		var us UsageSummary
		if err := rows.Scan(&us.Provider, &us.Model, &us.Outcome, &us.TotalTurns, &us.Fallbacks,
			&us.TotalTokens, &us.TotalCostUSD, &us.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		summaries = append(summaries, us)
	}
	return summaries, rows.Err()
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
