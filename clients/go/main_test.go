package main

import (
	"testing"

	"github.com/Nandeesh-nh/lan-chat/internal/models"
)

func TestChangedMessages(t *testing.T) {
	rendered := make(map[uint64]string)

	msgs := []models.Message{
		{ID: 1, Kind: models.KindText, Sender: "alice", Body: "hello"},
		{ID: 2, Kind: models.KindText, Sender: "bob", Body: "hi"},
	}

	out := changedMessages(rendered, msgs)
	if len(out) != 2 {
		t.Fatalf("first poll printed %d messages, want 2", len(out))
	}

	// Unchanged log prints nothing.
	if out := changedMessages(rendered, msgs); len(out) != 0 {
		t.Fatalf("unchanged poll printed %d messages, want 0", len(out))
	}

	// An edit to an already-printed message is re-rendered.
	msgs[0].Body = "hello all"
	msgs[0].Edited = true
	out = changedMessages(rendered, msgs)
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("edited poll printed %+v, want just message 1", out)
	}
	if !out[0].Edited {
		t.Error("re-rendered message lost its edited flag")
	}

	// The edit itself prints only once.
	if out := changedMessages(rendered, msgs); len(out) != 0 {
		t.Fatalf("post-edit poll printed %d messages, want 0", len(out))
	}

	// New arrivals still print alongside a stable backlog.
	msgs = append(msgs, models.Message{ID: 3, Kind: models.KindText, Sender: "bob", Body: "news"})
	out = changedMessages(rendered, msgs)
	if len(out) != 1 || out[0].ID != 3 {
		t.Fatalf("arrival poll printed %+v, want just message 3", out)
	}
}
