package session

import (
	"testing"

	"github.com/Nandeesh-nh/lan-chat/internal/chatlog"
	"github.com/Nandeesh-nh/lan-chat/internal/models"
)

func TestOpenTabIdempotent(t *testing.T) {
	s := New("bob")

	first := s.OpenTab("alice")
	second := s.OpenTab("alice")

	if first.ID != second.ID {
		t.Fatalf("duplicate tab created: %s vs %s", first.ID, second.ID)
	}
	if len(s.Tabs()) != 1 {
		t.Fatalf("expected exactly one tab, got %d", len(s.Tabs()))
	}
	if s.Active() != chatlog.Private("alice") {
		t.Fatalf("second open did not activate, active=%v", s.Active())
	}
}

func TestCloseTabActivationFallback(t *testing.T) {
	s := New("bob")
	a := s.OpenTab("alice")
	c := s.OpenTab("carol")

	// Closing the active tab falls back to the most-recently-opened
	// remaining tab.
	s.Activate(chatlog.Private("alice"))
	if !s.CloseTab(a.ID) {
		t.Fatal("close failed")
	}
	if s.Active() != chatlog.Private("carol") {
		t.Fatalf("expected fallback to carol, got %v", s.Active())
	}

	// Closing the last tab falls back to broadcast.
	if !s.CloseTab(c.ID) {
		t.Fatal("close failed")
	}
	if !s.Active().IsBroadcast() {
		t.Fatalf("expected broadcast fallback, got %v", s.Active())
	}

	if s.CloseTab("no-such-tab") {
		t.Fatal("closing unknown tab reported success")
	}
}

func TestCloseInactiveTabKeepsActive(t *testing.T) {
	s := New("bob")
	a := s.OpenTab("alice")
	s.OpenTab("carol")

	s.CloseTab(a.ID)
	if s.Active() != chatlog.Private("carol") {
		t.Fatalf("active conversation changed unexpectedly: %v", s.Active())
	}
}

func TestActivateRequiresOpenTab(t *testing.T) {
	s := New("bob")
	if s.Activate(chatlog.Private("ghost")) {
		t.Fatal("activated a conversation with no tab")
	}
	if !s.Activate(chatlog.Broadcast()) {
		t.Fatal("broadcast must always be activatable")
	}
}

func TestUnreadAccumulatesAcrossPolls(t *testing.T) {
	log := chatlog.New()
	s := New("bob")
	s.OpenTab("alice")
	s.Activate(chatlog.Broadcast())

	send := func(sender, target, body string) {
		t.Helper()
		if _, err := log.Append(sender, target, models.KindText, body, nil); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	send("alice", "bob", "one")
	s.Observe(log.Snapshot())
	if got := s.Unread(chatlog.Private("alice")); got != 1 {
		t.Fatalf("unread after first poll = %d, want 1", got)
	}

	send("alice", "bob", "two")
	send("alice", "bob", "three")
	s.Observe(log.Snapshot())
	if got := s.Unread(chatlog.Private("alice")); got != 3 {
		t.Fatalf("unread did not accumulate: %d, want 3", got)
	}

	// A poll with no change leaves the counter alone.
	s.Observe(log.Snapshot())
	if got := s.Unread(chatlog.Private("alice")); got != 3 {
		t.Fatalf("unread drifted on idle poll: %d", got)
	}
}

func TestActiveConversationPinnedToZero(t *testing.T) {
	log := chatlog.New()
	s := New("bob")
	s.OpenTab("alice")

	if _, err := log.Append("alice", "bob", models.KindText, "hi", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Observe(log.Snapshot())
	if got := s.Unread(chatlog.Private("alice")); got != 0 {
		t.Fatalf("active conversation accrued unread: %d", got)
	}
}

func TestActivateZeroesImmediately(t *testing.T) {
	log := chatlog.New()
	s := New("bob")
	s.OpenTab("alice")
	s.Activate(chatlog.Broadcast())

	for i := 0; i < 4; i++ {
		if _, err := log.Append("alice", "bob", models.KindText, "hi", nil); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	s.Observe(log.Snapshot())
	if got := s.Unread(chatlog.Private("alice")); got != 4 {
		t.Fatalf("unread = %d, want 4", got)
	}

	// Switching tabs zeroes the counter before any poll runs.
	s.Activate(chatlog.Private("alice"))
	if got := s.Unread(chatlog.Private("alice")); got != 0 {
		t.Fatalf("activate did not zero unread: %d", got)
	}
}

func TestDeletionNeverGoesNegative(t *testing.T) {
	log := chatlog.New()
	s := New("bob")
	s.OpenTab("alice")
	s.Activate(chatlog.Broadcast())

	m, err := log.Append("alice", "bob", models.KindText, "soon deleted", nil)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Observe(log.Snapshot())
	s.Activate(chatlog.Private("alice")) // read it
	s.Activate(chatlog.Broadcast())

	if err := log.Delete(m.ID, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	s.Observe(log.Snapshot())
	if got := s.Unread(chatlog.Private("alice")); got != 0 {
		t.Fatalf("unread went negative or stale: %d", got)
	}

	// The lowered total becomes the new baseline: one new message means
	// exactly one unread, not a catch-up from the old count.
	if _, err := log.Append("alice", "bob", models.KindText, "new", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Observe(log.Snapshot())
	if got := s.Unread(chatlog.Private("alice")); got != 1 {
		t.Fatalf("unread = %d, want 1", got)
	}
}

// Mirrors the two-user walkthrough: broadcast hello, private tab opened,
// private message while the tab is active, then a switch back.
func TestTwoUserWalkthrough(t *testing.T) {
	log := chatlog.New()
	bob := New("bob")

	if _, err := log.Append("alice", "", models.KindText, "hello", nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Bob polls with broadcast active by default.
	bob.Observe(log.Snapshot())
	if got := bob.Unread(chatlog.Broadcast()); got != 0 {
		t.Fatalf("broadcast unread while active = %d", got)
	}

	// Bob opens a private tab with alice; it becomes active.
	bob.OpenTab("alice")
	if bob.Active() != chatlog.Private("alice") {
		t.Fatalf("tab not active: %v", bob.Active())
	}

	// Alice sends privately; bob is looking at that conversation.
	if _, err := log.Append("alice", "bob", models.KindText, "hi bob", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	bob.Observe(log.Snapshot())
	if got := bob.Unread(chatlog.Private("alice")); got != 0 {
		t.Fatalf("active private unread = %d", got)
	}
	if got := bob.Unread(chatlog.Broadcast()); got != 0 {
		t.Fatalf("broadcast unread = %d, want 0", got)
	}

	// Switch back to broadcast: the private counter restarts from the
	// observed baseline, so only genuinely new messages count.
	bob.Activate(chatlog.Broadcast())
	bob.Observe(log.Snapshot())
	if got := bob.Unread(chatlog.Private("alice")); got != 0 {
		t.Fatalf("baseline not carried over: %d", got)
	}
	if _, err := log.Append("alice", "bob", models.KindText, "still there?", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	bob.Observe(log.Snapshot())
	if got := bob.Unread(chatlog.Private("alice")); got != 1 {
		t.Fatalf("unread = %d, want 1", got)
	}
}

func TestTabIDsAreStableAndUnique(t *testing.T) {
	s := New("bob")
	a := s.OpenTab("alice")
	c := s.OpenTab("carol")
	if a.ID == "" || c.ID == "" || a.ID == c.ID {
		t.Fatalf("bad tab ids: %q, %q", a.ID, c.ID)
	}
	if again := s.OpenTab("alice"); again.ID != a.ID {
		t.Fatalf("tab id changed on reopen: %s vs %s", again.ID, a.ID)
	}
}
