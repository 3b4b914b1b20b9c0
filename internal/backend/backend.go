// Package backend assembles a record store, the optional AMQP client
// and the record service for a configured backend type.
package backend

import (
	"fintrack/internal/services"
	"fintrack/internal/store"
)

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

// Type selects the record store implementation.
type Type string

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{MemoryBackend, SQLiteBackend}
}

// CleanupFunc releases the resources behind a backend.
type CleanupFunc func() error

// Result is an assembled backend: the raw store for subscriptions and
// the service for the command path.
type Result struct {
	Store   store.Store
	Service *services.RecordService
	Cleanup CleanupFunc
}

// Config holds what the factory needs to build a backend.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Change notification (optional; sqlite backend only)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}
