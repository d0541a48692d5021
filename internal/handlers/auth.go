package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Nandeesh-nh/lan-chat/internal/auth"
	"github.com/Nandeesh-nh/lan-chat/internal/metrics"
	"github.com/Nandeesh-nh/lan-chat/internal/models"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the login response.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// LogoutRequest represents the logout request body.
type LogoutRequest struct {
	Username string `json:"username"`
}

// Register handles account creation.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		h.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if !usernameRegex.MatchString(req.Username) {
		h.Error(w, http.StatusBadRequest, "username must be 3-32 characters, alphanumeric with hyphens only")
		return
	}
	if len(req.Password) < 6 {
		h.Error(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	existing, err := h.users.GetUser(r.Context(), req.Username)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if existing != nil {
		h.Error(w, http.StatusConflict, "username already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Username, string(hash))
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	metrics.UsersRegistered.Inc()
	h.JSON(w, http.StatusCreated, user)
}

// Login verifies credentials, marks the user online and issues a
// session token. A join notice lands in the log the first time the user
// comes online.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		h.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.users.GetUser(r.Context(), req.Username)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if user == nil {
		h.Error(w, http.StatusNotFound, "username not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.Error(w, http.StatusUnauthorized, "incorrect password")
		return
	}

	token, err := auth.NewToken(user.Username, h.cfg.JWTSecret, h.cfg.TokenTTL)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	if h.presence.Join(user.Username) {
		h.systemNotice(user.Username + " joined the chat")
	}
	metrics.OnlineUsers.Set(float64(h.presence.Count()))

	h.JSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// Logout marks the user offline and posts a leave notice.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" {
		h.Error(w, http.StatusBadRequest, "username is required")
		return
	}
	if err := h.requireActingUser(r, req.Username); err != nil {
		h.StoreError(w, err)
		return
	}

	if h.presence.Leave(req.Username) {
		h.systemNotice(req.Username + " left the chat")
	}
	metrics.OnlineUsers.Set(float64(h.presence.Count()))

	h.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// systemNotice appends a broadcast system message, ignoring failures:
// a full or failed notice must never break the user action it annotates.
func (h *Handler) systemNotice(text string) {
	_, _ = h.chat.Append(systemSender, "", models.KindSystem, text, nil)
}
