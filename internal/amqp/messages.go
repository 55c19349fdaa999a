package amqp

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// EventKind names the change that happened to a transaction.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

func (k EventKind) Valid() bool {
	switch k {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	}
	return false
}

// TransactionEvent is published after every successful write to the store.
// It carries only the id; consumers that need the record fetch it.
type TransactionEvent struct {
	Kind      EventKind `json:"kind"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(kind EventKind, id string) TransactionEvent {
	return TransactionEvent{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func (e TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and checks an event body.
func TransactionEventFromJSON(data []byte) (TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return TransactionEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if !e.Kind.Valid() {
		return TransactionEvent{}, fmt.Errorf("decode event: unknown kind %q", e.Kind)
	}
	if e.ID == "" {
		return TransactionEvent{}, fmt.Errorf("decode event: missing id")
	}
	return e, nil
}
