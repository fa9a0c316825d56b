package domain

import "time"

type StallType struct {
	ID        uint      `json:"id"`
	EventID   uint      `json:"event_id"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StallTypeUpdate carries the fields an admin wants to change. Nil means unchanged.
type StallTypeUpdate struct {
	Name      *string
	UnitPrice *float64
	Quantity  *int
}

// StallTypeAllocation is what the registry hands back after a write: the type as
// stored and the capacity its event still has left.
type StallTypeAllocation struct {
	StallType         StallType `json:"stall_type"`
	RemainingCapacity int       `json:"remaining_capacity"`
}

type StallTypeSummary struct {
	StallType
	Booked    int `json:"booked"`
	Available int `json:"available"`
}
