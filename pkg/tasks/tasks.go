package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"you-sub/internal/models"
)

const (
	TypeSyncSubscriptions = "subscriptions:sync"

	// QueueSync is served by a single worker so that syncs never overlap.
	QueueSync = "sync"
)

type SyncSubscriptionsTaskPayload struct {
	PageURL       string
	HTML          string
	Subscriptions []models.RawSubscription
}

// NewSyncSubscriptionsTask builds a sync task. Syncs are never retried; a
// failure stays visible through the task's last error until retention ends.
func NewSyncSubscriptionsTask(p SyncSubscriptionsTaskPayload, timeout, retention time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSyncSubscriptions, payload,
		asynq.Queue(QueueSync),
		asynq.MaxRetry(0),
		asynq.Timeout(timeout),
		asynq.Retention(retention),
	), nil
}
