package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"you-sub/internal/syncer"
	"you-sub/pkg/tasks"
)

type TaskHandler struct {
	syncer        syncer.Syncer
	scrapeTimeout time.Duration
}

// NewTaskHandler returns a handler that syncs through s, bounding each scrape
// by scrapeTimeout.
func NewTaskHandler(s syncer.Syncer, scrapeTimeout time.Duration) *TaskHandler {
	return &TaskHandler{syncer: s, scrapeTimeout: scrapeTimeout}
}

// HandleSyncSubscriptionsTask reconciles an uploaded scrape into the store.
// Failures are final: the task is archived with the error as its last error.
func (h *TaskHandler) HandleSyncSubscriptionsTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.SyncSubscriptionsTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Printf("Syncing subscriptions from %q (%d records, %d bytes of html)", p.PageURL, len(p.Subscriptions), len(p.HTML))

	snapshot := &syncer.Snapshot{
		PageURL:       p.PageURL,
		HTML:          p.HTML,
		Subscriptions: p.Subscriptions,
	}
	w := &syncer.Workflow{
		Navigator:     snapshot,
		Scraper:       snapshot,
		Syncer:        h.syncer,
		ScrapeTimeout: h.scrapeTimeout,
	}

	state, err := w.Run(ctx)
	if err != nil {
		log.Printf("failed to sync subscriptions: %v", err)
		return fmt.Errorf("failed to sync subscriptions: %w: %w", err, asynq.SkipRetry)
	}

	if rw := t.ResultWriter(); rw != nil {
		result, _ := json.Marshal(map[string]int{"subscriptions": len(state.Subscriptions)})
		if _, err := rw.Write(result); err != nil {
			log.Printf("failed to write task result: %v", err)
		}
	}

	log.Printf("Successfully synced %d subscriptions", len(state.Subscriptions))
	return nil
}
