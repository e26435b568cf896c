package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry event operations.
const (
	OpAdd    = "add"
	OpEdit   = "edit"
	OpDelete = "delete"
)

// EntryEvent announces a completed write to the ledger. It carries only
// the operation and the entry id; consumers fetch the current row from
// the database, so a stale event body can never overwrite newer data.
type EntryEvent struct {
	Op         string    `json:"op"`
	EntryID    int64     `json:"entry_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEntryEvent creates an event stamped with the current time.
func NewEntryEvent(op string, entryID int64) *EntryEvent {
	return &EntryEvent{
		Op:         op,
		EntryID:    entryID,
		OccurredAt: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EntryEventFromJSON parses an event from JSON bytes and rejects
// unknown operations.
func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var e EntryEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Op {
	case OpAdd, OpEdit, OpDelete:
	default:
		return nil, fmt.Errorf("unknown entry event op %q", e.Op)
	}
	return &e, nil
}
