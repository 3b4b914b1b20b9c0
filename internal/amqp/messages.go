package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeKind names the write that produced a change message.
type ChangeKind string

// RecordChangeMessage is the lightweight notification published after a
// record store write. It carries only identifiers; consumers fetch the
// full record from the store themselves.
type RecordChangeMessage struct {
	UserID    string     `json:"user_id"`
	RecordID  string     `json:"record_id"`
	Kind      ChangeKind `json:"kind"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewRecordChangeMessage creates a change message stamped with now.
func NewRecordChangeMessage(userID, recordID string, kind ChangeKind) *RecordChangeMessage {
	return &RecordChangeMessage{
		UserID:    userID,
		RecordID:  recordID,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

// Valid reports whether the message names a known change kind and both ids.
func (m *RecordChangeMessage) Valid() error {
	switch m.Kind {
	case ChangeCreate, ChangeUpdate, ChangeDelete:
	default:
		return fmt.Errorf("unknown change kind %q", m.Kind)
	}
	if m.UserID == "" || m.RecordID == "" {
		return fmt.Errorf("change message missing identifiers")
	}
	return nil
}

// ToJSON converts the message to JSON bytes.
func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeMessageFromJSON creates a message from JSON bytes.
func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
