package chatlog

import "github.com/Nandeesh-nh/lan-chat/internal/models"

// Conversation selects which subset of the log a viewer is looking at.
// The zero value is the broadcast conversation.
type Conversation struct {
	peer string
}

// Broadcast returns the conversation shared by all users.
func Broadcast() Conversation {
	return Conversation{}
}

// Private returns the conversation between the viewer and peer.
func Private(peer string) Conversation {
	return Conversation{peer: peer}
}

// IsBroadcast reports whether c is the broadcast conversation.
func (c Conversation) IsBroadcast() bool {
	return c.peer == ""
}

// Peer returns the other participant, or "" for broadcast.
func (c Conversation) Peer() string {
	return c.peer
}

func (c Conversation) String() string {
	if c.peer == "" {
		return "broadcast"
	}
	return "private:" + c.peer
}

// Visible computes the subsequence of msgs that viewer sees in conv,
// preserving insertion order.
//
// Broadcast shows every unaddressed message, system notices included.
// A private conversation shows exactly the messages flowing between
// viewer and peer, in either direction; system and broadcast messages
// never appear there.
//
// This is a pure function over a snapshot and must be recomputed on
// every poll: the underlying log mutates between polls.
func Visible(msgs []models.Message, viewer string, conv Conversation) []models.Message {
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if conv.IsBroadcast() {
			if m.TargetUser == "" {
				out = append(out, m)
			}
			continue
		}
		if m.TargetUser == "" {
			continue
		}
		if (m.Sender == viewer && m.TargetUser == conv.peer) ||
			(m.Sender == conv.peer && m.TargetUser == viewer) {
			out = append(out, m)
		}
	}
	return out
}
