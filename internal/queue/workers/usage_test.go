package workers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/examiner/internal/examiner"
	"github.com/nikhilbhutani/examiner/internal/queue"
)

type memoryStore struct {
	records []examiner.TurnRecord
	err     error
}

func (m *memoryStore) LogTurnUsage(_ context.Context, rec examiner.TurnRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func usageTask(t *testing.T, rec examiner.TurnRecord) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(queue.UsageRecordPayload{Record: rec})
	require.NoError(t, err)
	return asynq.NewTask(queue.TypeUsageRecord, data)
}

func TestUsageWorkerStoresRecord(t *testing.T) {
	store := &memoryStore{}
	w := NewUsageWorker(store)

	rec := examiner.TurnRecord{TurnID: uuid.New(), Outcome: examiner.OutcomeNoTranscript, AudioBytes: 300}
	require.NoError(t, w.ProcessTask(context.Background(), usageTask(t, rec)))

	require.Len(t, store.records, 1)
	assert.Equal(t, rec.TurnID, store.records[0].TurnID)
	assert.Equal(t, examiner.OutcomeNoTranscript, store.records[0].Outcome)
}

func TestUsageWorkerSkipsRetryOnBadPayload(t *testing.T) {
	w := NewUsageWorker(&memoryStore{})

	err := w.ProcessTask(context.Background(), asynq.NewTask(queue.TypeUsageRecord, []byte("{not json")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = w.ProcessTask(context.Background(), usageTask(t, examiner.TurnRecord{}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestUsageWorkerStoreErrorIsRetried(t *testing.T) {
	w := NewUsageWorker(&memoryStore{err: errors.New("connection reset")})

	err := w.ProcessTask(context.Background(), usageTask(t, examiner.TurnRecord{TurnID: uuid.New()}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}
