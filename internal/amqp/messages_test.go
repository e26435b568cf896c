package amqp

import (
	"testing"
	"time"
)

func TestNewEntryEvent(t *testing.T) {
	event := NewEntryEvent(OpAdd, 12345)

	if event.Op != OpAdd {
		t.Errorf("Op = %q, want %q", event.Op, OpAdd)
	}
	if event.EntryID != 12345 {
		t.Errorf("EntryID = %d, want 12345", event.EntryID)
	}
	if event.OccurredAt.IsZero() {
		t.Error("OccurredAt should not be zero")
	}
	if time.Since(event.OccurredAt) > time.Second {
		t.Error("OccurredAt should be recent")
	}
}

func TestEntryEventJSONRoundTrip(t *testing.T) {
	occurred := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	event := &EntryEvent{Op: OpEdit, EntryID: 7, OccurredAt: occurred}

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	parsed, err := EntryEventFromJSON(body)
	if err != nil {
		t.Fatalf("EntryEventFromJSON: %v", err)
	}
	if parsed.Op != event.Op || parsed.EntryID != event.EntryID {
		t.Errorf("parsed %+v, want %+v", parsed, event)
	}
	if !parsed.OccurredAt.Equal(occurred) {
		t.Errorf("OccurredAt = %v, want %v", parsed.OccurredAt, occurred)
	}
}

func TestEntryEventFromJSONRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"op": "add", "entry_id": "not_a_number"}`},
		{"unknown op", `{"op": "truncate", "entry_id": 1}`},
		{"empty op", `{"entry_id": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EntryEventFromJSON([]byte(tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
