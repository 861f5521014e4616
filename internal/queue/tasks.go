package queue

import "github.com/nikhilbhutani/examiner/internal/examiner"

const (
	TypeUsageRecord = "usage:record"

	// QueueUsage holds usage records; the worker serves only this queue.
	QueueUsage = "usage"
)

// UsageRecordPayload carries one turn's accounting record to the worker.
type UsageRecordPayload struct {
	Record examiner.TurnRecord `json:"record"`
}
