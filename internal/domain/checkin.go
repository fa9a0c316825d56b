package domain

type CheckInScope string

const (
	CheckInStall CheckInScope = "stall"
	CheckInEvent CheckInScope = "event"
)

// CheckInReference is computed on demand and never stored.
type CheckInReference struct {
	Scope     CheckInScope `json:"scope"`
	EventID   uint         `json:"event_id"`
	StallID   *uint        `json:"stall_id,omitempty"`
	Reference string       `json:"reference"`
	URL       string       `json:"url"`
}

// CheckInTarget is what a scanned reference resolves to.
type CheckInTarget struct {
	Scope   CheckInScope `json:"scope"`
	Event   Event        `json:"event"`
	Stall   *Stall       `json:"stall,omitempty"`
	Booking *Booking     `json:"booking,omitempty"`
}
