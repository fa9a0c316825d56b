package response

import "github.com/propexpo/stall-booking-api/internal/domain"

type CapacityResponse struct {
	EventID              uint  `json:"event_id"`
	ExcludingStallTypeID *uint `json:"excluding_stall_type_id,omitempty"`
	Remaining            int   `json:"remaining"`
	Quantity             *int  `json:"quantity,omitempty"`
	CanAllocate          *bool `json:"can_allocate,omitempty"`
}

type DeleteStallTypeResponse struct {
	StallType         domain.StallType `json:"stall_type"`
	CancelledBookings []domain.Booking `json:"cancelled_bookings"`
}
