package domain

import "time"

type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID          uint          `json:"id"`
	StallID     uint          `json:"stall_id"`
	BuilderID   uint          `json:"builder_id"`
	EventID     uint          `json:"event_id"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
}

func (b Booking) IsActive() bool {
	return b.Status == BookingActive
}
