// Package session tracks one client's open conversation tabs and the
// unread counters derived from successive polls.
package session

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Nandeesh-nh/lan-chat/internal/chatlog"
)

// Tab is one open private conversation. Broadcast is implicit: it is
// always present, always first, and cannot be closed.
type Tab struct {
	ID       string // stable for the tab's lifetime
	Peer     string
	OpenedAt time.Time
}

// Conversation returns the selector this tab renders.
func (t *Tab) Conversation() chatlog.Conversation {
	return chatlog.Private(t.Peer)
}

// Registry is the ordered set of open tabs plus the active conversation.
// It is not safe for concurrent use; Session serializes access.
type Registry struct {
	tabs   []*Tab
	active chatlog.Conversation
}

// NewRegistry returns a registry with broadcast active and no open tabs.
func NewRegistry() *Registry {
	return &Registry{active: chatlog.Broadcast()}
}

// OpenTab opens (or re-activates) the tab for peer and makes it active.
// The second return is true when a new tab was created.
func (r *Registry) OpenTab(peer string) (*Tab, bool) {
	for _, t := range r.tabs {
		if t.Peer == peer {
			r.active = t.Conversation()
			return t, false
		}
	}
	t := &Tab{
		ID:       ulid.Make().String(),
		Peer:     peer,
		OpenedAt: time.Now(),
	}
	r.tabs = append(r.tabs, t)
	r.active = t.Conversation()
	return t, true
}

// CloseTab removes the tab with the given id. When the closed tab was
// active, activation falls back to the most-recently-opened remaining
// tab, or to broadcast if none remain. Returns false for unknown ids.
func (r *Registry) CloseTab(id string) bool {
	for i, t := range r.tabs {
		if t.ID != id {
			continue
		}
		wasActive := r.active == t.Conversation()
		r.tabs = append(r.tabs[:i], r.tabs[i+1:]...)
		if wasActive {
			if n := len(r.tabs); n > 0 {
				r.active = r.tabs[n-1].Conversation()
			} else {
				r.active = chatlog.Broadcast()
			}
		}
		return true
	}
	return false
}

// Activate switches the active conversation. Activating a private
// conversation with no open tab is a no-op returning false.
func (r *Registry) Activate(conv chatlog.Conversation) bool {
	if conv.IsBroadcast() {
		r.active = conv
		return true
	}
	for _, t := range r.tabs {
		if t.Peer == conv.Peer() {
			r.active = conv
			return true
		}
	}
	return false
}

// Active returns the currently active conversation.
func (r *Registry) Active() chatlog.Conversation {
	return r.active
}

// Tabs returns the open tabs in display order.
func (r *Registry) Tabs() []*Tab {
	out := make([]*Tab, len(r.tabs))
	copy(out, r.tabs)
	return out
}

// Conversations returns broadcast followed by every open tab's
// conversation, in tab order.
func (r *Registry) Conversations() []chatlog.Conversation {
	out := make([]chatlog.Conversation, 0, len(r.tabs)+1)
	out = append(out, chatlog.Broadcast())
	for _, t := range r.tabs {
		out = append(out, t.Conversation())
	}
	return out
}
