// Package rating records user feedback on finished reconciliation runs.
package rating

import (
	"encoding/json"
	"fmt"
	"net/http"

	"vendor_recon/pkg/core/session"
	"vendor_recon/pkg/core/store"
)

var sessions *session.Manager

func InitHandler(mgr *session.Manager) {
	sessions = mgr
}

type ratingRequest struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
	Rating    int    `json:"rating"`
}

// HandleRating attaches a 1-5 rating to the user's most recent run and
// cancels any pending rating prompt for the session.
func HandleRating(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, ok := sessions.Get(req.UserID, req.ChannelID)
	if !ok {
		http.Error(w, "no completed run to rate", http.StatusNotFound)
		return
	}
	usageID := sess.UsageID()
	if usageID == 0 {
		http.Error(w, "no completed run to rate", http.StatusNotFound)
		return
	}

	if err := store.LogRating(r.Context(), usageID, req.Rating); err != nil {
		fmt.Printf("[rating] failed to store rating: %v\n", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sess.CancelRating()
	fmt.Printf("[rating] user %s rated run %d: %d/5\n", req.UserID, usageID, req.Rating)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "recorded"})
}
