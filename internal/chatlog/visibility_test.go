package chatlog

import (
	"testing"

	"github.com/Nandeesh-nh/lan-chat/internal/models"
)

func seedLog(t *testing.T) *Store {
	t.Helper()
	s := New()
	add := func(sender, target string, kind models.Kind, body string) {
		t.Helper()
		if _, err := s.Append(sender, target, kind, body, nil); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	add("System", "", models.KindSystem, "alice joined the chat") // id 1
	add("alice", "", models.KindText, "hello everyone")           // id 2
	add("alice", "bob", models.KindText, "hi bob")                // id 3
	add("bob", "alice", models.KindText, "hi alice")              // id 4
	add("carol", "bob", models.KindText, "bob only")              // id 5
	add("bob", "", models.KindText, "broadcast from bob")         // id 6
	return s
}

func ids(msgs []models.Message) []uint64 {
	out := make([]uint64, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func equalIDs(a []uint64, b ...uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestVisibleBroadcast(t *testing.T) {
	snap := seedLog(t).Snapshot()

	// Broadcast shows every unaddressed message, system notices included,
	// for any viewer.
	for _, viewer := range []string{"alice", "bob", "dave"} {
		got := ids(Visible(snap, viewer, Broadcast()))
		if !equalIDs(got, 1, 2, 6) {
			t.Fatalf("viewer %s broadcast view = %v", viewer, got)
		}
	}
}

func TestVisiblePrivate(t *testing.T) {
	snap := seedLog(t).Snapshot()

	tests := []struct {
		viewer string
		peer   string
		want   []uint64
	}{
		{"alice", "bob", []uint64{3, 4}},
		{"bob", "alice", []uint64{3, 4}},
		{"bob", "carol", []uint64{5}},
		{"alice", "carol", nil},
		{"dave", "bob", nil},
	}
	for _, tt := range tests {
		got := ids(Visible(snap, tt.viewer, Private(tt.peer)))
		if !equalIDs(got, tt.want...) {
			t.Fatalf("Visible(%s, Private(%s)) = %v, want %v", tt.viewer, tt.peer, got, tt.want)
		}
	}
}

func TestVisibleEavesdropping(t *testing.T) {
	snap := seedLog(t).Snapshot()

	// A third party never sees someone else's private exchange, whichever
	// conversation they look through.
	if got := Visible(snap, "carol", Private("alice")); len(got) != 0 {
		t.Fatalf("carol sees alice<->bob traffic: %v", ids(got))
	}
	for _, m := range Visible(snap, "carol", Broadcast()) {
		if m.TargetUser != "" {
			t.Fatalf("private message %d leaked into broadcast", m.ID)
		}
	}
}

func TestVisibleOrderPreserved(t *testing.T) {
	snap := seedLog(t).Snapshot()
	got := Visible(snap, "bob", Private("alice"))
	for i := 1; i < len(got); i++ {
		if got[i].ID <= got[i-1].ID {
			t.Fatalf("order not ascending: %v", ids(got))
		}
	}
}

func TestVisibleRecomputedAfterMutation(t *testing.T) {
	s := seedLog(t)

	if err := s.Delete(3, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got := ids(Visible(s.Snapshot(), "bob", Private("alice")))
	if !equalIDs(got, 4) {
		t.Fatalf("deleted message still visible: %v", got)
	}

	if _, err := s.Edit(4, "bob", "hi alice!"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	fresh := Visible(s.Snapshot(), "alice", Private("bob"))
	if len(fresh) != 1 || fresh[0].Body != "hi alice!" || !fresh[0].Edited {
		t.Fatalf("edit not observed on next poll: %+v", fresh)
	}
}
