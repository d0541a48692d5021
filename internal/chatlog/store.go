// Package chatlog holds the shared in-memory message log and the
// visibility rules that decide which slice of it a viewer sees.
package chatlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/Nandeesh-nh/lan-chat/internal/models"
)

// MaxMessages is the retention cap. Once the log exceeds it, the oldest
// messages are evicted regardless of read state.
const MaxMessages = 100

// Store is the single source of truth for all messages. It lives for the
// process lifetime only; nothing is persisted.
//
// All mutations are serialized under one mutex so eviction and edits are
// atomic units. Snapshot returns a copy, so readers never observe a torn
// list.
type Store struct {
	mu     sync.RWMutex
	nextID uint64
	msgs   []models.Message
}

// New creates an empty message log.
func New() *Store {
	return &Store{nextID: 1}
}

// Append assigns the next id and current timestamp to a new message and
// adds it to the log, evicting from the front past MaxMessages.
func (s *Store) Append(sender, targetUser string, kind models.Kind, body string, file *models.FileRef) (models.Message, error) {
	if sender == "" {
		return models.Message{}, fmt.Errorf("%w: sender is required", ErrInvalidArgument)
	}
	if !kind.Valid() {
		return models.Message{}, fmt.Errorf("%w: unknown message kind %q", ErrInvalidArgument, kind)
	}
	if body == "" {
		return models.Message{}, fmt.Errorf("%w: message body is empty", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.Message{
		ID:         s.nextID,
		Kind:       kind,
		Sender:     sender,
		TargetUser: targetUser,
		Body:       body,
		Timestamp:  time.Now(),
	}
	if file != nil {
		msg.StoredName = file.StoredName
		msg.OriginalName = file.OriginalName
		msg.FileSize = file.Size
	}
	s.nextID++

	s.msgs = append(s.msgs, msg)
	if len(s.msgs) > MaxMessages {
		s.msgs = append(s.msgs[:0], s.msgs[len(s.msgs)-MaxMessages:]...)
	}

	return msg, nil
}

// Edit replaces the body of an existing message. Only the original sender
// may edit, and system messages are immutable.
func (s *Store) Edit(id uint64, requester, newBody string) (models.Message, error) {
	if newBody == "" {
		return models.Message{}, fmt.Errorf("%w: message body is empty", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Message{}, fmt.Errorf("%w: message %d", ErrNotFound, id)
	}
	m := &s.msgs[i]
	if m.Sender != requester {
		return models.Message{}, fmt.Errorf("%w: message %d belongs to %s", ErrForbidden, id, m.Sender)
	}
	if m.Kind == models.KindSystem {
		return models.Message{}, fmt.Errorf("%w: system messages cannot be edited", ErrInvalidArgument)
	}

	now := time.Now()
	m.Body = newBody
	m.Edited = true
	m.EditedAt = &now
	return *m, nil
}

// Delete removes a message permanently. Same ownership and existence
// checks as Edit; system messages cannot be deleted by users.
func (s *Store) Delete(id uint64, requester string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: message %d", ErrNotFound, id)
	}
	m := s.msgs[i]
	if m.Sender != requester {
		return fmt.Errorf("%w: message %d belongs to %s", ErrForbidden, id, m.Sender)
	}
	if m.Kind == models.KindSystem {
		return fmt.Errorf("%w: system messages cannot be deleted", ErrInvalidArgument)
	}

	s.msgs = append(s.msgs[:i], s.msgs[i+1:]...)
	return nil
}

// MarkDelivered flags every message for which viewer is the recipient of
// the exchange identified by peer. With peer empty it covers broadcast
// messages instead. Idempotent.
func (s *Store) MarkDelivered(viewer, peer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.msgs {
		m := &s.msgs[i]
		if peer == "" {
			if m.TargetUser == "" && m.Sender != viewer {
				m.Delivered = true
			}
			continue
		}
		if m.Sender == peer && m.TargetUser == viewer {
			m.Delivered = true
		}
	}
}

// Snapshot returns the current log in insertion order. The returned slice
// is a copy: it can be ranged over any number of times and is unaffected
// by mutations that happen after it was taken.
func (s *Store) Snapshot() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Len returns the current number of retained messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs)
}

// indexOf returns the position of id in the log, or -1. Caller holds the
// lock.
func (s *Store) indexOf(id uint64) int {
	for i := range s.msgs {
		if s.msgs[i].ID == id {
			return i
		}
	}
	return -1
}
