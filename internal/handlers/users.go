package handlers

import "net/http"

// ListUsers returns the currently online usernames.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.presence.List())
}
