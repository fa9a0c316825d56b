package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/propexpo/stall-booking-api/internal/domain"
)

type CreateEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StallCount  *int   `json:"stall_count"`
	StartDate   string `json:"start_date" example:"2026-11-21"`
	EndDate     string `json:"end_date" example:"2026-11-23"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.Location, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.StallCount, validation.NotNil, validation.Min(0)),
		validation.Field(&req.StartDate, validation.Required),
		validation.Field(&req.EndDate, validation.Required),
	)
}

func (req *CreateEventRequest) ToDomain() (domain.Event, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return domain.Event{}, err
	}

	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return domain.Event{}, err
	}

	return domain.Event{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		StallCount:  *req.StallCount,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// UpdateEventRequest only touches the fields that are present.
type UpdateEventRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	StallCount  *int    `json:"stall_count"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 120)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.Location, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&req.StallCount, validation.Min(0)),
		validation.Field(&req.StartDate, validation.NilOrNotEmpty),
		validation.Field(&req.EndDate, validation.NilOrNotEmpty),
	)
}

func (req *UpdateEventRequest) ToDomain() (domain.EventUpdate, error) {
	update := domain.EventUpdate{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		StallCount:  req.StallCount,
	}

	if req.StartDate != nil {
		start, err := parseDate("start_date", *req.StartDate)
		if err != nil {
			return domain.EventUpdate{}, err
		}
		update.StartDate = timePtr(start)
	}

	if req.EndDate != nil {
		end, err := parseDate("end_date", *req.EndDate)
		if err != nil {
			return domain.EventUpdate{}, err
		}
		update.EndDate = timePtr(end)
	}

	return update, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
