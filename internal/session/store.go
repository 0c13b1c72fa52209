// Package session holds per-session conversation history.
//
// Three Store implementations exist: an in-process map (the default), a Redis
// list per session, and a SQLite table. All are safe for concurrent use.
package session

import (
	"context"
	"time"
)

// Role constants for stored turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultID is the session key used when a caller supplies none.
const DefaultID = "default"

// Turn is one message in a conversation. Turns are never modified after
// they are appended.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn returns a turn stamped with the current time.
func NewTurn(role, content string) Turn {
	return Turn{Role: role, Content: content, Timestamp: time.Now()}
}

// Store keeps ordered turn lists keyed by session id.
type Store interface {
	// Append adds a turn to the end of the session, creating it if needed.
	Append(ctx context.Context, id string, turn Turn) error

	// Recent returns the last n turns in chronological order. It returns
	// fewer when the session is shorter, and all turns when n <= 0.
	Recent(ctx context.Context, id string, n int) ([]Turn, error)

	// Len returns the number of stored turns.
	Len(ctx context.Context, id string) (int, error)

	// Clear deletes the session. Clearing an unknown session is not an error.
	Clear(ctx context.Context, id string) error

	// Close releases resources held by the store.
	Close() error
}

// Pinner is implemented by stores that may drop a session on their own.
// A pinned session is kept while a chat call on it is in flight, so its
// reply is not appended to an emptied history.
type Pinner interface {
	Pin(id string) (unpin func())
}
