package amqp

import (
	"encoding/json"
	"time"
)

// Entity change operations.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// EntityChangedMessage announces a write to one entity row. It carries only
// the table and id; consumers fetch the current row from the store, so a
// stale or duplicated delivery is harmless.
type EntityChangedMessage struct {
	Table     string    `json:"table"`
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntityChangedMessage creates a change message stamped with the current time.
func NewEntityChangedMessage(table, id, op string) *EntityChangedMessage {
	return &EntityChangedMessage{
		Table:     table,
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntityChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntityChangedMessageFromJSON creates a message from JSON bytes
func EntityChangedMessageFromJSON(data []byte) (*EntityChangedMessage, error) {
	var msg EntityChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
