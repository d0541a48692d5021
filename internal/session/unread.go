package session

import "github.com/Nandeesh-nh/lan-chat/internal/chatlog"

// UnreadTracker accumulates, per conversation, how many new visible
// messages arrived while that conversation was not active. Counts derive
// from diffing visible totals between polls, so a deletion (count
// decrease) never pushes unread below zero.
type UnreadTracker struct {
	unread       map[chatlog.Conversation]int
	lastObserved map[chatlog.Conversation]int
}

// NewUnreadTracker returns a tracker with all counters at zero.
func NewUnreadTracker() *UnreadTracker {
	return &UnreadTracker{
		unread:       make(map[chatlog.Conversation]int),
		lastObserved: make(map[chatlog.Conversation]int),
	}
}

// Observe records the visible-message total for conv from the current
// poll. The active conversation is pinned at zero unread; any other
// conversation accumulates the positive delta since the previous poll.
// The observed total is remembered unconditionally.
func (u *UnreadTracker) Observe(conv chatlog.Conversation, currentCount int, active bool) {
	if active {
		u.unread[conv] = 0
	} else if d := currentCount - u.lastObserved[conv]; d > 0 {
		u.unread[conv] += d
	}
	u.lastObserved[conv] = currentCount
}

// Reset zeroes the unread counter for conv, as activating its tab does.
func (u *UnreadTracker) Reset(conv chatlog.Conversation) {
	u.unread[conv] = 0
}

// Forget drops all state for conv once its tab is closed.
func (u *UnreadTracker) Forget(conv chatlog.Conversation) {
	delete(u.unread, conv)
	delete(u.lastObserved, conv)
}

// Count returns the accumulated unread count for conv.
func (u *UnreadTracker) Count(conv chatlog.Conversation) int {
	return u.unread[conv]
}

// Counts returns a copy of every non-zero unread counter.
func (u *UnreadTracker) Counts() map[chatlog.Conversation]int {
	out := make(map[chatlog.Conversation]int, len(u.unread))
	for c, n := range u.unread {
		if n > 0 {
			out[c] = n
		}
	}
	return out
}
