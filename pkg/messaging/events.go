package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// Equipment lifecycle events
	EventEquipmentCheckedOut = "equipment.item.checked_out"
	EventEquipmentCheckedIn  = "equipment.item.checked_in"
	EventEquipmentRemoved    = "equipment.item.removed"
	EventEquipmentRelabeled  = "equipment.item.relabeled"
	EventEquipmentCreated    = "equipment.item.created"

	// User events (consumed from the accounts service)
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Exchange names
const (
	ExchangeEquipmentEvents = "equipment.events"
	ExchangeUserEvents      = "user.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Equipment Events

// EquipmentCheckedOutEvent is published when an item is checked out to a borrower
type EquipmentCheckedOutEvent struct {
	ItemID      string    `json:"item_id"`
	ItemUUID    string    `json:"item_uuid"`
	ProductID   string    `json:"product_id"`
	BorrowerID  string    `json:"borrower_id"`
	ProcessorID string    `json:"processor_id"`
	CheckedOut  time.Time `json:"checked_out"`
}

// EquipmentCheckedInEvent is published when an item returns to a storage location
type EquipmentCheckedInEvent struct {
	ItemID      string    `json:"item_id"`
	ItemUUID    string    `json:"item_uuid"`
	ProductID   string    `json:"product_id"`
	LocationID  string    `json:"location_id"`
	ProcessorID string    `json:"processor_id"`
	Condition   string    `json:"condition"`
	CheckedIn   time.Time `json:"checked_in"`
}

// EquipmentRemovedEvent is published when an item is removed from inventory
type EquipmentRemovedEvent struct {
	ItemID      string `json:"item_id"`
	ItemUUID    string `json:"item_uuid"`
	ProductID   string `json:"product_id"`
	ProcessorID string `json:"processor_id"`
	Reason      string `json:"reason,omitempty"`
	Forced      bool   `json:"forced"`
}

// EquipmentRelabeledEvent is published when an item's QR identity is regenerated
type EquipmentRelabeledEvent struct {
	ItemID      string `json:"item_id"`
	OldUUID     string `json:"old_uuid"`
	NewUUID     string `json:"new_uuid"`
	ProcessorID string `json:"processor_id"`
}

// EquipmentCreatedEvent is published when new items are added to inventory
type EquipmentCreatedEvent struct {
	ProductID   string   `json:"product_id"`
	ItemUUIDs   []string `json:"item_uuids"`
	LocationID  string   `json:"location_id,omitempty"`
	ProcessorID string   `json:"processor_id"`
}

// User Events

// UserCreatedEvent is consumed when a user account is created
type UserCreatedEvent struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	RoleName  string `json:"role_name"`
}

// FullName returns the user's full name
func (e *UserCreatedEvent) FullName() string {
	return e.FirstName + " " + e.LastName
}

// UserUpdatedEvent is consumed when a user account is updated
type UserUpdatedEvent struct {
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"` // Changed fields
}

// UserDeletedEvent is consumed when a user account is deleted
type UserDeletedEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
