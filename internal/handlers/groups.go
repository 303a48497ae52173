package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"you-sub/internal/feed"
)

type groupRequest struct {
	Name string `json:"name"`
}

// GetGroups returns the grouped view of all subscriptions.
func (h *Handlers) GetGroups(w http.ResponseWriter, r *http.Request) {
	state, err := h.reconciler.State(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.views.Build(state))
}

// PostGroup adds a group. The name comes from a JSON body or the "name" form field.
func (h *Handlers) PostGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		req.Name = r.FormValue("name")
	}

	groups, err := h.reconciler.AddGroup(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]string{"groups": groups})
}

func (h *Handlers) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	name, ok := pathVar(r, "name")
	if !ok {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	if err := h.reconciler.DeleteGroup(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGroupRSS exports the channels of one group as an RSS feed.
func (h *Handlers) GetGroupRSS(w http.ResponseWriter, r *http.Request) {
	name, ok := pathVar(r, "name")
	if !ok {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	state, err := h.reconciler.State(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	group, ok := h.views.Build(state).Group(name)
	if !ok {
		http.Error(w, "Group not found", http.StatusNotFound)
		return
	}

	rss, err := feed.GenerateGroupRSS(group, feed.BaseURL(r, h.opts.BaseURL), time.Now())
	if err != nil {
		log.Printf("Error generating RSS: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	w.Write([]byte(rss))
}
