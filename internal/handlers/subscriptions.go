package handlers

import (
	"encoding/json"
	"net/http"
)

type subscriptionGroupRequest struct {
	Group string `json:"group"`
}

// PutSubscriptionGroup moves a channel to another group. Unknown channels
// are ignored.
func (h *Handlers) PutSubscriptionGroup(w http.ResponseWriter, r *http.Request) {
	channelID, ok := pathVar(r, "channelId")
	if !ok {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	var req subscriptionGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Group == "" {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	if err := h.reconciler.SetSubscriptionGroup(r.Context(), channelID, req.Group); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
