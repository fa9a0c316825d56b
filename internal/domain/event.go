package domain

import "time"

type Event struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StallCount  int       `json:"stall_count"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventInventory is an event together with the state of its stall capacity.
type EventInventory struct {
	Event     Event `json:"event"`
	Allocated int   `json:"allocated"`
	Remaining int   `json:"remaining"`
	Booked    int   `json:"booked"`
	Available int   `json:"available"`
}

type EventUpdate struct {
	Name        *string
	Description *string
	Location    *string
	StallCount  *int
	StartDate   *time.Time
	EndDate     *time.Time
}
