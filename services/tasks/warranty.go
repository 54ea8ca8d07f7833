package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeWarrantySweep = "warranty:sweep"

// WarrantySweepPayload records why a sweep was queued.
type WarrantySweepPayload struct {
	Trigger string    `json:"trigger"` // "schedule" or "startup"
	QueueAt time.Time `json:"queuedAt"`
}

func NewWarrantySweepTask(trigger string, at time.Time) (*asynq.Task, error) {
	b, err := json.Marshal(WarrantySweepPayload{Trigger: trigger, QueueAt: at})
	if err != nil {
		return nil, err
	}
	// A sweep past its window is stale; the next one covers it.
	return asynq.NewTask(TypeWarrantySweep, b, asynq.MaxRetry(3), asynq.Timeout(30*time.Minute)), nil
}
