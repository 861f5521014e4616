package stats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/examiner/internal/examiner"
)

// DefaultKey is the Redis hash holding the turn counters.
const DefaultKey = "examiner:turns"

const (
	FieldTotal              = "total"
	FieldRepairFallback     = "repair_fallback"
	FieldExaminerFallback   = "examiner_fallback"
	FieldPronunciationFlags = "pronunciation_flags"
)

// RedisStats counts turn outcomes in a Redis hash. It implements
// examiner.Observer.
type RedisStats struct {
	client *redis.Client
	key    string
}

func NewRedisStats(client *redis.Client, key string) *RedisStats {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStats{client: client, key: key}
}

// OutcomeField is the hash field counting turns with outcome o.
func OutcomeField(o examiner.Outcome) string {
	return "outcome:" + string(o)
}

func (s *RedisStats) ObserveTurn(ctx context.Context, rec examiner.TurnRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, s.key, FieldTotal, 1)
	pipe.HIncrBy(ctx, s.key, OutcomeField(rec.Outcome), 1)
	if rec.RepairFallback {
		pipe.HIncrBy(ctx, s.key, FieldRepairFallback, 1)
	}
	if rec.ExaminerFallback {
		pipe.HIncrBy(ctx, s.key, FieldExaminerFallback, 1)
	}
	if rec.PronunciationFlags > 0 {
		pipe.HIncrBy(ctx, s.key, FieldPronunciationFlags, int64(rec.PronunciationFlags))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record turn stats: %w", err)
	}
	return nil
}

// Snapshot returns all counters.
func (s *RedisStats) Snapshot(ctx context.Context) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("read turn stats: %w", err)
	}

	counters := make(map[string]int64, len(raw))
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse counter %s: %w", field, err)
		}
		counters[field] = n
	}
	return counters, nil
}

// Reset deletes all counters.
func (s *RedisStats) Reset(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *RedisStats) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
