package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"you-sub/internal/reconcile"
	"you-sub/internal/scrape"
	"you-sub/internal/view"
	"you-sub/pkg/tasks"
)

type Options struct {
	BaseURL       string
	SyncTimeout   time.Duration
	SyncRetention time.Duration
}

type Handlers struct {
	reconciler  *reconcile.Reconciler
	views       *view.Builder
	asynqClient tasks.TaskEnqueuer
	inspector   tasks.TaskInspector
	opts        Options
}

func New(reconciler *reconcile.Reconciler, views *view.Builder, asynqClient tasks.TaskEnqueuer, inspector tasks.TaskInspector, opts Options) *Handlers {
	return &Handlers{
		reconciler:  reconciler,
		views:       views,
		asynqClient: asynqClient,
		inspector:   inspector,
		opts:        opts,
	}
}

// pathVar returns the unescaped route variable. The router matches on the
// escaped path, so names holding "/" arrive as a single %2F-encoded segment.
func pathVar(r *http.Request, key string) (string, bool) {
	v, err := url.PathUnescape(mux.Vars(r)[key])
	if err != nil {
		return "", false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError maps domain errors to status codes. Store failures are logged
// and reported without their details.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reconcile.ErrDuplicateGroup):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, reconcile.ErrProtectedGroup):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, scrape.ErrScrapeUnavailable):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		log.Printf("Internal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
