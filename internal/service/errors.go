package service

import (
	"errors"

	"github.com/propexpo/stall-booking-api/internal/pkg/checkinref"
	"github.com/propexpo/stall-booking-api/internal/repository"
)

var (
	ErrEventNotFound     = repository.ErrEventNotFound
	ErrStallTypeNotFound = repository.ErrStallTypeNotFound
	ErrStallNotFound     = repository.ErrStallNotFound
	ErrBookingNotFound   = repository.ErrBookingNotFound
	ErrAlreadyBooked     = repository.ErrAlreadyBooked
	ErrBookingsChanged   = repository.ErrBookingsChanged

	ErrCapacityExceeded            = repository.ErrCapacityExceeded
	ErrInsufficientAvailableStalls = repository.ErrInsufficientAvailableStalls
	ErrHasActiveBookings           = repository.ErrHasActiveBookings

	ErrInvalidReference = checkinref.ErrInvalidReference

	ErrValidation      = errors.New("validation failed")
	ErrNoStallLeft     = errors.New("no available stall left")
	ErrNotBookingOwner = errors.New("booking belongs to another builder")
)

type (
	CapacityExceededError            = repository.CapacityExceededError
	InsufficientAvailableStallsError = repository.InsufficientAvailableStallsError
	HasActiveBookingsError           = repository.HasActiveBookingsError
)
