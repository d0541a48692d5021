// Package lanchat provides a client for the LAN chat HTTP API.
package lanchat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Nandeesh-nh/lan-chat/internal/models"
)

// Client is a LAN chat API client.
type Client struct {
	BaseURL    string
	ConfigDir  string
	Username   string
	Token      string
	SessionID  string
	HTTPClient *http.Client
}

// Session holds the persisted login state.
type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// NewClient creates a new LAN chat client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	configDir := os.Getenv("LANCHAT_CONFIG")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".lanchat")
	}

	c := &Client{
		BaseURL:    baseURL,
		ConfigDir:  configDir,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}

	_ = c.LoadSession()
	return c
}

// LoadSession loads the saved login state from disk.
func (c *Client) LoadSession() error {
	data, err := os.ReadFile(filepath.Join(c.ConfigDir, "session.json"))
	if err != nil {
		return err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	c.SessionID = s.ID
	c.Username = s.Username
	c.Token = s.Token
	return nil
}

// SaveSession saves the login state to disk.
func (c *Client) SaveSession() error {
	if err := os.MkdirAll(c.ConfigDir, 0700); err != nil {
		return err
	}

	if c.SessionID == "" {
		c.SessionID = uuid.New().String()
	}

	s := Session{
		ID:       c.SessionID,
		Username: c.Username,
		Token:    c.Token,
	}

	data, _ := json.MarshalIndent(s, "", "  ")
	return os.WriteFile(filepath.Join(c.ConfigDir, "session.json"), data, 0600)
}

// ClearSession removes the saved login state.
func (c *Client) ClearSession() error {
	c.Username = ""
	c.Token = ""
	c.SessionID = ""
	err := os.Remove(filepath.Join(c.ConfigDir, "session.json"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// doRequest performs an HTTP request against the API.
func (c *Client) doRequest(method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, errResp.Error)
	}

	return respBody, nil
}

// User represents a registered account.
type User struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Register creates a new account.
func (c *Client) Register(username, password string) (*User, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	respBody, err := c.doRequest("POST", "/api/auth/register", body)
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal(respBody, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates and persists the session token.
func (c *Client) Login(username, password string) (*User, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	respBody, err := c.doRequest("POST", "/api/auth/login", body)
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}

	c.Username = username
	c.Token = resp.Token
	if err := c.SaveSession(); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout marks the user offline and clears the saved session.
func (c *Client) Logout() error {
	if c.Username == "" {
		return c.ClearSession()
	}

	body, _ := json.Marshal(map[string]string{"username": c.Username})
	if _, err := c.doRequest("POST", "/api/auth/logout", body); err != nil {
		return err
	}
	return c.ClearSession()
}

// Messages retrieves the full server-side log. Passing the username
// doubles as a presence heartbeat.
func (c *Client) Messages() ([]models.Message, error) {
	path := "/api/messages"
	if c.Username != "" {
		path += "?user=" + url.QueryEscape(c.Username)
	}

	respBody, err := c.doRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}

	var msgs []models.Message
	if err := json.Unmarshal(respBody, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Send posts a message. An empty targetUser means broadcast.
func (c *Client) Send(text, targetUser string) (*models.Message, error) {
	body, _ := json.Marshal(map[string]string{
		"sender":      c.Username,
		"message":     text,
		"target_user": targetUser,
	})

	respBody, err := c.doRequest("POST", "/api/messages", body)
	if err != nil {
		return nil, err
	}

	var msg models.Message
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Edit rewrites the body of one of the user's own messages.
func (c *Client) Edit(id uint64, text string) (*models.Message, error) {
	body, _ := json.Marshal(map[string]string{
		"user":    c.Username,
		"message": text,
	})

	respBody, err := c.doRequest("PUT", fmt.Sprintf("/api/messages/%d", id), body)
	if err != nil {
		return nil, err
	}

	var msg models.Message
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Delete removes one of the user's own messages permanently.
func (c *Client) Delete(id uint64) error {
	body, _ := json.Marshal(map[string]string{"user": c.Username})
	_, err := c.doRequest("DELETE", fmt.Sprintf("/api/messages/%d", id), body)
	return err
}

// MarkDelivered flags messages addressed to the user as delivered.
// An empty peer marks broadcast messages, otherwise the private
// messages from that peer.
func (c *Client) MarkDelivered(peer string) error {
	body, _ := json.Marshal(map[string]string{
		"user":        c.Username,
		"target_user": peer,
	})
	_, err := c.doRequest("POST", "/api/messages/mark-delivered", body)
	return err
}

// Users retrieves the currently online usernames.
func (c *Client) Users() ([]string, error) {
	respBody, err := c.doRequest("GET", "/api/users", nil)
	if err != nil {
		return nil, err
	}

	var users []string
	if err := json.Unmarshal(respBody, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UploadResult is the response from a file upload.
type UploadResult struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
}

// Upload sends a local file to the shared store and announces it in
// the chosen conversation.
func (c *Client) Upload(localPath, targetUser string) (*UploadResult, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := mw.WriteField("sender", c.Username); err != nil {
		return nil, err
	}
	if targetUser != "" {
		if err := mw.WriteField("target_user", targetUser); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", c.BaseURL+"/api/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, errResp.Error)
	}

	var result UploadResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Download fetches a stored file into destDir, named after the
// original upload. It returns the written path.
func (c *Client) Download(storedName, destDir string) (string, error) {
	req, err := http.NewRequest("GET", c.BaseURL+"/api/download/"+url.PathEscape(storedName), nil)
	if err != nil {
		return "", err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("server error %d", resp.StatusCode)
	}

	// The stored name prefixes a timestamp and sender onto the
	// original filename; strip them back off for the local copy.
	name := storedName
	if parts := strings.SplitN(storedName, "_", 4); len(parts) == 4 {
		name = parts[3]
	}

	dest := filepath.Join(destDir, filepath.Base(name))
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(dest)
		return "", err
	}
	return dest, nil
}
