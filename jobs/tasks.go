package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAnalyticsWarmup pre-populates the analytics summary cache.
	TaskAnalyticsWarmup = "analytics:warmup"
)

// AnalyticsWarmupPayload scopes the warmup window. Months counts backwards
// from the current month; zero falls back to the default window.
type AnalyticsWarmupPayload struct {
	Months int `json:"months"`
}

// NewAnalyticsWarmupTask constructs an Asynq task.
func NewAnalyticsWarmupTask(payload AnalyticsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, data), nil
}
