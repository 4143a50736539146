// Package event holds the primitives shared by every domain event.
// Events are immutable facts; concrete variants live next to their aggregate.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type names an event variant, e.g. "user.registered".
type Type string

func (t Type) String() string { return string(t) }

// Event is a committed state transition of an aggregate.
type Event interface {
	EventID() string
	EventType() Type
	AggregateID() int64
	// Version is the 1-based position of the event in its aggregate stream.
	Version() int
	OccurredAt() time.Time
}

// Base carries the fields common to all events. Embed it in concrete variants.
type Base struct {
	ID        string    `json:"id"`
	Kind      Type      `json:"type"`
	Aggregate int64     `json:"aggregate_id"`
	Seq       int       `json:"version"`
	Timestamp time.Time `json:"occurred_at"`
}

func NewBase(kind Type, aggregateID int64, version int) Base {
	return Base{
		ID:        uuid.NewString(),
		Kind:      kind,
		Aggregate: aggregateID,
		Seq:       version,
		Timestamp: time.Now().UTC(),
	}
}

func (b Base) EventID() string       { return b.ID }
func (b Base) EventType() Type       { return b.Kind }
func (b Base) AggregateID() int64    { return b.Aggregate }
func (b Base) Version() int          { return b.Seq }
func (b Base) OccurredAt() time.Time { return b.Timestamp }
