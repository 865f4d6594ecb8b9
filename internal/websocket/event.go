package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"

	// EventTypeMaterialized marks an occurrence turned into a real transaction
	EventTypeMaterialized EventType = "materialized"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeTransaction    EntityType = "transaction"
	EntityTypeAccount        EntityType = "account"
	EntityTypeCategory       EntityType = "category"
	EntityTypePlannedPayment EntityType = "planned_payment"
	EntityTypeRecurring      EntityType = "recurring"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "transaction.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "transaction"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionCreated creates a transaction.created event
func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

// TransactionUpdated creates a transaction.updated event
func TransactionUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeTransaction, payload)
}

// TransactionDeleted creates a transaction.deleted event
func TransactionDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransaction, payload)
}

// AccountUpdated creates an account.updated event
func AccountUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeAccount, payload)
}

// PlannedPaymentCreated creates a planned_payment.created event
func PlannedPaymentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypePlannedPayment, payload)
}

// PlannedPaymentUpdated creates a planned_payment.updated event
func PlannedPaymentUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypePlannedPayment, payload)
}

// PlannedPaymentDeleted creates a planned_payment.deleted event
func PlannedPaymentDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypePlannedPayment, payload)
}

// RecurringMaterialized creates a recurring.materialized event
func RecurringMaterialized(payload interface{}) Event {
	return NewEvent(EventTypeMaterialized, EntityTypeRecurring, payload)
}
