package presence

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestJoinLeaveList(t *testing.T) {
	tr := New(time.Minute, zerolog.Nop(), nil)

	if !tr.Join("bob") {
		t.Fatal("first join should report new")
	}
	if tr.Join("bob") {
		t.Fatal("second join should not report new")
	}
	tr.Join("alice")

	got := tr.List()
	if len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Fatalf("unexpected list: %v", got)
	}

	if !tr.Leave("bob") {
		t.Fatal("leave of online user failed")
	}
	if tr.Leave("bob") {
		t.Fatal("leave of offline user reported success")
	}
	if tr.Online("bob") {
		t.Fatal("bob still online after leave")
	}
}

func TestTouchIgnoresOffline(t *testing.T) {
	tr := New(time.Minute, zerolog.Nop(), nil)
	tr.Touch("ghost")
	if tr.Count() != 0 {
		t.Fatal("touch created a presence entry")
	}
}

func TestReapExpiresIdleUsers(t *testing.T) {
	var expired []string
	tr := New(10*time.Millisecond, zerolog.Nop(), func(u string) {
		expired = append(expired, u)
	})

	tr.Join("alice")
	tr.Join("bob")
	time.Sleep(20 * time.Millisecond)
	tr.Touch("bob")

	got := tr.Reap()
	if len(got) != 1 || got[0] != "alice" {
		t.Fatalf("unexpected reap result: %v", got)
	}
	if len(expired) != 1 || expired[0] != "alice" {
		t.Fatalf("onExpire not invoked correctly: %v", expired)
	}
	if !tr.Online("bob") {
		t.Fatal("recently touched user was reaped")
	}
}
