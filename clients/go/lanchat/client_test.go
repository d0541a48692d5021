package lanchat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Nandeesh-nh/lan-chat/internal/chatlog"
	"github.com/Nandeesh-nh/lan-chat/internal/models"
)

func TestSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()

	c := &Client{ConfigDir: dir, Username: "alice", Token: "tok123"}
	if err := c.SaveSession(); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if c.SessionID == "" {
		t.Fatal("SaveSession did not assign a session id")
	}

	c2 := &Client{ConfigDir: dir}
	if err := c2.LoadSession(); err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if c2.Username != "alice" || c2.Token != "tok123" || c2.SessionID != c.SessionID {
		t.Fatalf("loaded session = %+v, want copy of saved", c2)
	}

	if err := c2.ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	c3 := &Client{ConfigDir: dir}
	if err := c3.LoadSession(); err == nil {
		t.Fatal("LoadSession succeeded after ClearSession")
	}
}

// fakeServer serves a mutable message log and records delivery acks.
type fakeServer struct {
	mu        sync.Mutex
	messages  []models.Message
	delivered []string // peers acked via mark-delivered
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/messages", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if r.Method == http.MethodPost {
			var req struct {
				Sender     string `json:"sender"`
				Message    string `json:"message"`
				TargetUser string `json:"target_user"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			m := models.Message{
				ID:         uint64(len(f.messages) + 1),
				Kind:       models.KindText,
				Sender:     req.Sender,
				TargetUser: req.TargetUser,
				Body:       req.Message,
			}
			f.messages = append(f.messages, m)
			json.NewEncoder(w).Encode(m)
			return
		}
		json.NewEncoder(w).Encode(f.messages)
	})
	mux.HandleFunc("/api/messages/mark-delivered", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TargetUser string `json:"target_user"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.delivered = append(f.delivered, req.TargetUser)
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{"alice", "bob"})
	})
	return mux
}

func (f *fakeServer) add(m models.Message) {
	f.mu.Lock()
	f.messages = append(f.messages, m)
	f.mu.Unlock()
}

func TestSendOpensPrivateTab(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := &Client{
		BaseURL:    srv.URL,
		Username:   "alice",
		HTTPClient: srv.Client(),
	}
	p := NewPoller(client)

	msg, err := p.Send("psst", "bob")
	if err != nil {
		t.Fatalf("Send private: %v", err)
	}
	if msg.TargetUser != "bob" {
		t.Fatalf("sent target = %q, want bob", msg.TargetUser)
	}

	// The sender sees the conversation they just started.
	tabs := p.Session.Tabs()
	if len(tabs) != 1 || tabs[0].Peer != "bob" {
		t.Fatalf("tabs after private send = %+v, want one tab for bob", tabs)
	}
	if got := p.Session.Active(); got != chatlog.Private("bob") {
		t.Errorf("active = %v, want private bob", got)
	}

	// Broadcast sends leave the registry alone.
	if _, err := p.Send("hi all", ""); err != nil {
		t.Fatalf("Send broadcast: %v", err)
	}
	if got := len(p.Session.Tabs()); got != 1 {
		t.Errorf("tabs after broadcast send = %d, want 1", got)
	}

	// A second send to the same peer re-uses the tab.
	if _, err := p.Send("again", "bob"); err != nil {
		t.Fatalf("Send again: %v", err)
	}
	if got := len(p.Session.Tabs()); got != 1 {
		t.Errorf("tabs after repeat send = %d, want 1", got)
	}

	// A failed send must not open a tab.
	srv.Close()
	if _, err := p.Send("lost", "carol"); err == nil {
		t.Fatal("Send after server close succeeded")
	}
	for _, tab := range p.Session.Tabs() {
		if tab.Peer == "carol" {
			t.Error("failed send opened a tab")
		}
	}
}

func TestPollerTracksUnreadAndAcks(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	fake.add(models.Message{ID: 1, Kind: models.KindText, Sender: "bob", Body: "hi all"})
	fake.add(models.Message{ID: 2, Kind: models.KindText, Sender: "bob", TargetUser: "alice", Body: "psst"})

	client := &Client{
		BaseURL:    srv.URL,
		Username:   "alice",
		HTTPClient: srv.Client(),
	}
	p := NewPoller(client)
	p.MessageInterval = 10 * time.Millisecond
	p.UserInterval = 20 * time.Millisecond

	// A tab for bob exists but the user is looking at broadcast, so
	// bob's private messages accrue as unread.
	p.Session.OpenTab("bob")
	p.Session.Activate(chatlog.Broadcast())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	deadline := time.After(2 * time.Second)
	var u Update
	for {
		select {
		case u = <-p.Updates():
		case <-deadline:
			t.Fatal("no update carrying the seeded messages")
		}
		if len(u.Messages) > 0 && len(u.Users) > 0 {
			break
		}
	}

	if !u.Connected {
		t.Error("update not marked connected")
	}
	if !u.Active.IsBroadcast() {
		t.Errorf("active = %v, want broadcast", u.Active)
	}
	// Broadcast view carries only the broadcast message.
	if len(u.Messages) != 1 || u.Messages[0].ID != 1 {
		t.Errorf("visible = %+v, want just message 1", u.Messages)
	}
	// The private message accrues as unread for bob's conversation.
	if got := u.Unread[chatlog.Private("bob")]; got != 1 {
		t.Errorf("unread from bob = %d, want 1", got)
	}
	if got := u.Unread[chatlog.Broadcast()]; got != 0 {
		t.Errorf("broadcast unread = %d, want 0 while active", got)
	}

	cancel()

	// Only the active (broadcast) conversation was acked.
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.delivered) == 0 {
		t.Fatal("no delivery acks sent")
	}
	for _, peer := range fake.delivered {
		if peer != "" {
			t.Errorf("acked peer %q, want broadcast only", peer)
		}
	}
}

func TestPollerKeepsStateWhenDisconnected(t *testing.T) {
	fake := &fakeServer{}
	fake.add(models.Message{ID: 1, Kind: models.KindText, Sender: "bob", Body: "hi"})
	srv := httptest.NewServer(fake.handler())

	client := &Client{
		BaseURL:    srv.URL,
		Username:   "alice",
		HTTPClient: &http.Client{Timeout: time.Second},
	}
	p := NewPoller(client)
	p.MessageInterval = 10 * time.Millisecond
	p.UserInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	deadline := time.After(2 * time.Second)
	var u Update
	for {
		select {
		case u = <-p.Updates():
		case <-deadline:
			t.Fatal("no connected update")
		}
		if u.Connected && len(u.Messages) == 1 {
			break
		}
	}

	srv.Close()

	for {
		select {
		case u = <-p.Updates():
		case <-deadline:
			t.Fatal("no disconnected update after server close")
		}
		if !u.Connected {
			// Last known state survives the outage.
			if len(u.Messages) != 1 || u.Messages[0].ID != 1 {
				t.Errorf("messages after disconnect = %+v, want retained", u.Messages)
			}
			return
		}
	}
}
