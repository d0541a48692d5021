package handlers

import (
	"net/http"
	"time"
)

// StatsResponse represents the response from the stats endpoint.
type StatsResponse struct {
	RegisteredUsers int64  `json:"registered_users"`
	OnlineUsers     int    `json:"online_users"`
	RetainedLog     int    `json:"retained_messages"`
	Timestamp       string `json:"timestamp"`
}

// Stats returns service statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	registered, err := h.users.CountUsers(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, StatsResponse{
		RegisteredUsers: registered,
		OnlineUsers:     h.presence.Count(),
		RetainedLog:     h.chat.Len(),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	})
}
