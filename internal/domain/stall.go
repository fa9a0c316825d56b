package domain

import "time"

type StallStatus string

const (
	StallAvailable StallStatus = "available"
	StallBooked    StallStatus = "booked"
)

type Stall struct {
	ID          uint        `json:"id"`
	StallTypeID uint        `json:"stall_type_id"`
	EventID     uint        `json:"event_id"`
	StallNumber int         `json:"stall_number"`
	Status      StallStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (s Stall) IsAvailable() bool {
	return s.Status == StallAvailable
}
