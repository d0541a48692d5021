package session

import (
	"sync"

	"github.com/Nandeesh-nh/lan-chat/internal/chatlog"
	"github.com/Nandeesh-nh/lan-chat/internal/models"
)

// Session is the single owner of one viewer's conversation state: the
// tab registry and the unread tracker. Every mutation goes through its
// methods under one mutex, so an in-flight poll and a tab switch cannot
// race.
type Session struct {
	viewer string

	mu       sync.Mutex
	registry *Registry
	tracker  *UnreadTracker
}

// New creates a session for viewer with broadcast active.
func New(viewer string) *Session {
	return &Session{
		viewer:   viewer,
		registry: NewRegistry(),
		tracker:  NewUnreadTracker(),
	}
}

// Viewer returns the username this session belongs to.
func (s *Session) Viewer() string {
	return s.viewer
}

// OpenTab opens or re-activates the private tab for peer and zeroes its
// unread counter. Sending a private message calls this implicitly so the
// sender always sees the conversation they just started.
func (s *Session) OpenTab(peer string) *Tab {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, _ := s.registry.OpenTab(peer)
	s.tracker.Reset(t.Conversation())
	return t
}

// CloseTab removes a tab and forgets its counters. Activation falls back
// per the registry rules.
func (s *Session) CloseTab(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var closed chatlog.Conversation
	for _, t := range s.registry.Tabs() {
		if t.ID == id {
			closed = t.Conversation()
		}
	}
	if !s.registry.CloseTab(id) {
		return false
	}
	s.tracker.Forget(closed)
	return true
}

// Activate switches the active conversation and immediately zeroes its
// unread counter, without waiting for the next poll.
func (s *Session) Activate(conv chatlog.Conversation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.Activate(conv) {
		return false
	}
	s.tracker.Reset(conv)
	return true
}

// Observe runs one poll cycle: for every known conversation it recomputes
// the visible count from the snapshot and feeds it to the unread tracker.
func (s *Session) Observe(msgs []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.registry.Active()
	for _, conv := range s.registry.Conversations() {
		n := len(chatlog.Visible(msgs, s.viewer, conv))
		s.tracker.Observe(conv, n, conv == active)
	}
}

// Active returns the currently active conversation.
func (s *Session) Active() chatlog.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Active()
}

// Tabs returns the open tabs in display order.
func (s *Session) Tabs() []*Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Tabs()
}

// Unread returns the accumulated unread count for conv.
func (s *Session) Unread(conv chatlog.Conversation) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Count(conv)
}

// Unreads returns a copy of every non-zero unread counter.
func (s *Session) Unreads() map[chatlog.Conversation]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Counts()
}
