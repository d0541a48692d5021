package models

import "time"

// Kind classifies a chat message.
type Kind string

const (
	KindText   Kind = "text"
	KindFile   Kind = "file"
	KindSystem Kind = "system"
)

// Valid reports whether k is one of the known message kinds.
func (k Kind) Valid() bool {
	return k == KindText || k == KindFile || k == KindSystem
}

// FileRef points at a stored upload attached to a file message.
type FileRef struct {
	StoredName   string // name on disk, {timestamp}_{sender}_{original}
	OriginalName string // name shown in the client's save dialog
	Size         int64
}

// Message is one entry in the shared chat log.
//
// ID, Sender, TargetUser, Kind and Timestamp are fixed at creation;
// only Body, Edited/EditedAt and Delivered mutate afterwards.
type Message struct {
	ID           uint64     `json:"id"`
	Kind         Kind       `json:"type"`
	Sender       string     `json:"sender"`
	TargetUser   string     `json:"target_user,omitempty"` // empty means broadcast
	Body         string     `json:"message"`
	StoredName   string     `json:"filename,omitempty"`
	OriginalName string     `json:"original_name,omitempty"`
	FileSize     int64      `json:"filesize,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
	Edited       bool       `json:"edited,omitempty"`
	EditedAt     *time.Time `json:"edit_timestamp,omitempty"`
	Delivered    bool       `json:"delivered,omitempty"`
}

// Broadcast reports whether the message is addressed to everyone.
func (m *Message) Broadcast() bool {
	return m.TargetUser == ""
}
