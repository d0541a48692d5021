// Package presence tracks which users are currently online. State is
// in-memory: a user is online from login (or any poll) until logout or
// until the reaper expires them for inactivity.
package presence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type entry struct {
	joined   time.Time
	lastSeen time.Time
}

// Tracker is a mutex-guarded map of online users and their last-seen
// instants. The onExpire callback runs outside the lock for every user
// the reaper removes.
type Tracker struct {
	mu       sync.Mutex
	users    map[string]*entry
	timeout  time.Duration
	logger   zerolog.Logger
	onExpire func(username string)
}

// New creates a tracker that expires users idle longer than timeout.
// onExpire may be nil.
func New(timeout time.Duration, logger zerolog.Logger, onExpire func(username string)) *Tracker {
	return &Tracker{
		users:    make(map[string]*entry),
		timeout:  timeout,
		logger:   logger,
		onExpire: onExpire,
	}
}

// Join marks a user online. Returns true when the user was not already
// online.
func (t *Tracker) Join(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if e, ok := t.users[username]; ok {
		e.lastSeen = now
		return false
	}
	t.users[username] = &entry{joined: now, lastSeen: now}
	return true
}

// Touch refreshes a user's last-seen instant. Unknown users are ignored;
// polling does not resurrect a logged-out session.
func (t *Tracker) Touch(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.users[username]; ok {
		e.lastSeen = time.Now()
	}
}

// Leave marks a user offline. Returns true when the user was online.
func (t *Tracker) Leave(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.users[username]; !ok {
		return false
	}
	delete(t.users, username)
	return true
}

// Online reports whether a user is currently online.
func (t *Tracker) Online(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.users[username]
	return ok
}

// List returns the online usernames in sorted order.
func (t *Tracker) List() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, 0, len(t.users))
	for u := range t.users {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of online users.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.users)
}

// Reap removes every user idle longer than the timeout and returns them.
func (t *Tracker) Reap() []string {
	t.mu.Lock()
	cutoff := time.Now().Add(-t.timeout)
	var expired []string
	for u, e := range t.users {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, u)
			delete(t.users, u)
		}
	}
	t.mu.Unlock()

	sort.Strings(expired)
	for _, u := range expired {
		t.logger.Info().Str("user", u).Msg("presence expired")
		if t.onExpire != nil {
			t.onExpire(u)
		}
	}
	return expired
}

// Run reaps on the given interval until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Reap()
		}
	}
}
