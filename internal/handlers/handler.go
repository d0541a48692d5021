package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/redis/go-redis/v9"

	"github.com/Nandeesh-nh/lan-chat/internal/api/middleware"
	"github.com/Nandeesh-nh/lan-chat/internal/chatlog"
	"github.com/Nandeesh-nh/lan-chat/internal/config"
	"github.com/Nandeesh-nh/lan-chat/internal/files"
	"github.com/Nandeesh-nh/lan-chat/internal/presence"
	"github.com/Nandeesh-nh/lan-chat/internal/store"
)

// systemSender names the author of join/leave notices.
const systemSender = "System"

// usernameRegex validates usernames: alphanumeric with hyphens, 3-32 chars.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9-]{3,32}$`)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	chat     *chatlog.Store
	users    store.UserStore
	presence *presence.Tracker
	files    *files.Store
	redis    *redis.Client
	cfg      *config.Config
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(chat *chatlog.Store, users store.UserStore, pres *presence.Tracker, fs *files.Store, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		chat:     chat,
		users:    users,
		presence: pres,
		files:    fs,
		redis:    rdb,
		cfg:      cfg,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// requireActingUser enforces that a request claiming to act as username
// really is that user. With REQUIRE_AUTH off an unauthenticated request
// is trusted (LAN mode), but a presented token must still match.
func (h *Handler) requireActingUser(r *http.Request, username string) error {
	tokenUser := middleware.GetUserFromContext(r.Context())
	if tokenUser == "" {
		if h.cfg.RequireAuth {
			return fmt.Errorf("%w: authentication required", chatlog.ErrForbidden)
		}
		return nil
	}
	if tokenUser != username {
		return fmt.Errorf("%w: token belongs to %s", chatlog.ErrForbidden, tokenUser)
	}
	return nil
}

// StoreError maps a chat-log error kind to its response status.
func (h *Handler) StoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatlog.ErrInvalidArgument):
		h.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatlog.ErrForbidden):
		h.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, chatlog.ErrNotFound):
		h.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatlog.ErrUnavailable):
		h.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.Error(w, http.StatusInternalServerError, "internal error")
	}
}
