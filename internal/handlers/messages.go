package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Nandeesh-nh/lan-chat/internal/metrics"
	"github.com/Nandeesh-nh/lan-chat/internal/models"
)

// PostMessageRequest represents the send-message request body.
type PostMessageRequest struct {
	Sender     string `json:"sender"`
	Message    string `json:"message"`
	TargetUser string `json:"target_user,omitempty"`
}

// EditMessageRequest represents the edit request body.
type EditMessageRequest struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

// DeleteMessageRequest represents the delete request body.
type DeleteMessageRequest struct {
	User string `json:"user"`
}

// MarkDeliveredRequest represents the mark-delivered request body.
type MarkDeliveredRequest struct {
	User       string `json:"user"`
	TargetUser string `json:"target_user,omitempty"`
}

// ListMessages returns the full current log. The server never filters
// by conversation; clients run the visibility rules against this raw
// feed. The user query parameter doubles as a presence heartbeat.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	if user := r.URL.Query().Get("user"); user != "" {
		h.presence.Touch(user)
	}
	h.JSON(w, http.StatusOK, h.chat.Snapshot())
}

// PostMessage appends a text message to the log.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Sender = strings.TrimSpace(req.Sender)
	req.Message = strings.TrimSpace(req.Message)
	req.TargetUser = strings.TrimSpace(req.TargetUser)
	if err := h.requireActingUser(r, req.Sender); err != nil {
		h.StoreError(w, err)
		return
	}

	before := h.chat.Len()
	msg, err := h.chat.Append(req.Sender, req.TargetUser, models.KindText, req.Message, nil)
	if err != nil {
		h.StoreError(w, err)
		return
	}
	if h.chat.Len() == before {
		metrics.MessagesEvicted.Inc()
	}
	metrics.MessagesAppended.WithLabelValues(scope(req.TargetUser)).Inc()

	h.JSON(w, http.StatusCreated, msg)
}

// EditMessage rewrites the body of the requester's own message.
func (h *Handler) EditMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.messageID(w, r)
	if !ok {
		return
	}

	var req EditMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.requireActingUser(r, req.User); err != nil {
		h.StoreError(w, err)
		return
	}

	msg, err := h.chat.Edit(id, req.User, strings.TrimSpace(req.Message))
	if err != nil {
		h.StoreError(w, err)
		return
	}
	metrics.MessagesEdited.Inc()

	h.JSON(w, http.StatusOK, msg)
}

// DeleteMessage removes the requester's own message permanently.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.messageID(w, r)
	if !ok {
		return
	}

	var req DeleteMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.requireActingUser(r, req.User); err != nil {
		h.StoreError(w, err)
		return
	}

	if err := h.chat.Delete(id, req.User); err != nil {
		h.StoreError(w, err)
		return
	}
	metrics.MessagesDeleted.Inc()

	h.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// MarkDelivered flags messages addressed to the polling user as
// delivered, scoped to one peer or to broadcast.
func (h *Handler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	var req MarkDeliveredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.User == "" {
		h.Error(w, http.StatusBadRequest, "user is required")
		return
	}
	if err := h.requireActingUser(r, req.User); err != nil {
		h.StoreError(w, err)
		return
	}

	h.chat.MarkDelivered(req.User, req.TargetUser)
	h.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// messageID parses the {id} route parameter.
func (h *Handler) messageID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid message id")
		return 0, false
	}
	return id, true
}

func scope(targetUser string) string {
	if targetUser == "" {
		return "broadcast"
	}
	return "private"
}
