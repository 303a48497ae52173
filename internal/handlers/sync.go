package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"you-sub/internal/models"
	"you-sub/pkg/tasks"
)

const maxSyncBodyBytes = 16 << 20

type syncRequest struct {
	PageURL       string                   `json:"pageUrl"`
	HTML          string                   `json:"html"`
	Subscriptions []models.RawSubscription `json:"subscriptions"`
}

type syncStatus struct {
	TaskID string `json:"taskId"`
	State  string `json:"state"`
	Error  string `json:"error,omitempty"`
	Result string `json:"result,omitempty"`
}

// PostSync queues an uploaded scrape for reconciliation and answers with the
// task id to poll.
func (h *Handlers) PostSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSyncBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if req.HTML == "" && req.Subscriptions == nil {
		http.Error(w, "Either html or subscriptions is required", http.StatusBadRequest)
		return
	}

	task, err := tasks.NewSyncSubscriptionsTask(tasks.SyncSubscriptionsTaskPayload{
		PageURL:       req.PageURL,
		HTML:          req.HTML,
		Subscriptions: req.Subscriptions,
	}, h.opts.SyncTimeout, h.opts.SyncRetention)
	if err != nil {
		log.Printf("Error creating task: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	info, err := h.asynqClient.Enqueue(task)
	if err != nil {
		log.Printf("Error enqueuing task: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, syncStatus{TaskID: info.ID, State: stateName(info.State)})
}

// GetSync reports the state of a queued sync, including its error once it failed.
func (h *Handlers) GetSync(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	info, err := h.inspector.GetTaskInfo(tasks.QueueSync, id)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			http.Error(w, "Sync not found", http.StatusNotFound)
			return
		}
		log.Printf("Error inspecting task %s: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, syncStatus{
		TaskID: info.ID,
		State:  stateName(info.State),
		Error:  info.LastErr,
		Result: string(info.Result),
	})
}

func stateName(s asynq.TaskState) string {
	if s == 0 {
		return ""
	}
	return s.String()
}
