package state

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Key addresses one conversation.
type Key struct {
	ChatID int64
	UserID int64
}

// KeyOf derives the session key from an incoming update.
// Private chats without a chat object fall back to the sender id.
func KeyOf(c tele.Context) Key {
	var k Key
	if s := c.Sender(); s != nil {
		k.UserID = s.ID
	}
	if ch := c.Chat(); ch != nil {
		k.ChatID = ch.ID
	} else {
		k.ChatID = k.UserID
	}
	return k
}

// Session stores conversation state and typed data for one key.
type Session[T any] struct {
	State   State
	Data    T
	Touched time.Time
}

// Idle reports whether no conversation step is pending.
func (s Session[T]) Idle() bool {
	return s.State == "" || s.State == StateIdle
}
