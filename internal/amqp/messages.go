package amqp

import (
	"encoding/json"
	"time"
)

// Operations carried by a ChangeMessage.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Tables carried by a ChangeMessage.
const (
	TableProfiles   = "profiles"
	TableCategories = "categories"
	TablePurchases  = "purchases"
	TableWishlist   = "wishlist"
)

// ChangeMessage announces that a row changed. It carries only identifiers;
// the worker reloads the affected collection from the database before it
// recomputes analytics.
type ChangeMessage struct {
	Table     string    `json:"table"`
	Op        string    `json:"op"`
	UserID    string    `json:"user_id"`
	RecordID  string    `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change message stamped with the current time.
func NewChangeMessage(table, op, userID, recordID string) *ChangeMessage {
	return &ChangeMessage{
		Table:     table,
		Op:        op,
		UserID:    userID,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
