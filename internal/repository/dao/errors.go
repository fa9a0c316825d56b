package dao

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrStallTypeNotFound = errors.New("stall type not found")
	ErrStallNotFound     = errors.New("stall not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrAlreadyBooked     = errors.New("stall is already booked")
	ErrBookingsChanged   = errors.New("bookings changed concurrently")

	ErrCapacityExceeded            = errors.New("capacity exceeded")
	ErrInsufficientAvailableStalls = errors.New("insufficient available stalls")
	ErrHasActiveBookings           = errors.New("stalls have active bookings")
)

// CapacityExceededError reports how far a requested quantity (or a reduced
// stall count) overshoots the event capacity.
type CapacityExceededError struct {
	By        int
	Remaining int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded by %d (remaining %d)", e.By, e.Remaining)
}

func (e *CapacityExceededError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

type InsufficientAvailableStallsError struct {
	Required  int
	Available int
}

func (e *InsufficientAvailableStallsError) Error() string {
	return fmt.Sprintf("insufficient available stalls: %d required, %d available", e.Required, e.Available)
}

func (e *InsufficientAvailableStallsError) Is(target error) bool {
	return target == ErrInsufficientAvailableStalls
}

type HasActiveBookingsError struct {
	Booked int
}

func (e *HasActiveBookingsError) Error() string {
	return fmt.Sprintf("%d stalls have active bookings", e.Booked)
}

func (e *HasActiveBookingsError) Is(target error) bool {
	return target == ErrHasActiveBookings
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
