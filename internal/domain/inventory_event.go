package domain

import "time"

type InventoryEventType string

const (
	StallTypeCreated InventoryEventType = "stall_type.created"
	StallTypeUpdated InventoryEventType = "stall_type.updated"
	StallTypeDeleted InventoryEventType = "stall_type.deleted"
	BookingCreated   InventoryEventType = "booking.created"
	BookingCanceled  InventoryEventType = "booking.cancelled"
	EventUpdated     InventoryEventType = "event.updated"
)

// InventoryEvent describes a committed change to an event's stall inventory.
type InventoryEvent struct {
	Type        InventoryEventType `json:"type"`
	EventID     uint               `json:"event_id"`
	StallTypeID *uint              `json:"stall_type_id,omitempty"`
	StallID     *uint              `json:"stall_id,omitempty"`
	BookingID   *uint              `json:"booking_id,omitempty"`
	BuilderID   *uint              `json:"builder_id,omitempty"`
	Remaining   *int               `json:"remaining,omitempty"`
	OccurredAt  time.Time          `json:"occurred_at"`
}
