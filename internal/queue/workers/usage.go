package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/examiner/internal/examiner"
	"github.com/nikhilbhutani/examiner/internal/queue"
)

// UsageStore persists turn accounting records.
type UsageStore interface {
	LogTurnUsage(ctx context.Context, rec examiner.TurnRecord) error
}

type UsageWorker struct {
	store UsageStore
}

func NewUsageWorker(store UsageStore) *UsageWorker {
	return &UsageWorker{store: store}
}

func (w *UsageWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.UsageRecordPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	rec := payload.Record
	if rec.TurnID == uuid.Nil {
		return fmt.Errorf("usage record without turn id: %w", asynq.SkipRetry)
	}

	if err := w.store.LogTurnUsage(ctx, rec); err != nil {
		return fmt.Errorf("store usage record %s: %w", rec.TurnID, err)
	}

	slog.Info("usage recorded", "turn_id", rec.TurnID, "outcome", rec.Outcome, "cost_usd", rec.CostUSD)
	return nil
}
