package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/propexpo/stall-booking-api/internal/domain"
)

type BookingRepository interface {
	Book(ctx context.Context, stallID, builderID uint) (domain.Booking, error)
	Cancel(ctx context.Context, id uint) (domain.Booking, error)
	FindByID(ctx context.Context, id uint) (domain.Booking, error)
	FindActiveByStallID(ctx context.Context, stallID uint) (domain.Booking, error)
	FindByBuilderID(ctx context.Context, builderID uint) ([]domain.Booking, error)
	FindByEventID(ctx context.Context, eventID uint) ([]domain.Booking, error)
}

type StallRepository interface {
	FindStallByID(ctx context.Context, id uint) (domain.Stall, error)
	ListAvailableStalls(ctx context.Context, eventID uint, stallTypeID *uint) ([]domain.Stall, error)
}

type BookingService struct {
	repo     BookingRepository
	stalls   StallRepository
	notifier Notifier
}

func NewBookingService(repo BookingRepository, stalls StallRepository, notifier Notifier) *BookingService {
	return &BookingService{
		repo:     repo,
		stalls:   stalls,
		notifier: notifier,
	}
}

// ListAvailableStalls returns the stalls still open for booking, lowest stall
// number first.
func (s *BookingService) ListAvailableStalls(ctx context.Context, eventID uint, stallTypeID *uint) ([]domain.Stall, error) {
	stalls, err := s.stalls.ListAvailableStalls(ctx, eventID, stallTypeID)
	if err != nil {
		return nil, fmt.Errorf("s.stalls.ListAvailableStalls -> %w", err)
	}

	return stalls, nil
}

// BookStall claims one stall for a builder. A caller that loses the race gets
// ErrAlreadyBooked and should pick another stall.
func (s *BookingService) BookStall(ctx context.Context, stallID, builderID uint) (domain.Booking, error) {
	booking, err := s.repo.Book(ctx, stallID, builderID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.repo.Book -> %w", err)
	}

	s.notifyBooking(ctx, domain.BookingCreated, booking)

	return booking, nil
}

// BookNextAvailable books the lowest numbered stall the builder can still win.
func (s *BookingService) BookNextAvailable(ctx context.Context, eventID uint, stallTypeID *uint, builderID uint) (domain.Booking, error) {
	stalls, err := s.ListAvailableStalls(ctx, eventID, stallTypeID)
	if err != nil {
		return domain.Booking{}, err
	}

	for _, stall := range stalls {
		booking, err := s.repo.Book(ctx, stall.ID, builderID)
		if err != nil {
			// gone since the listing, try the next one
			if errors.Is(err, ErrAlreadyBooked) || errors.Is(err, ErrStallNotFound) {
				zap.L().Debug("stall taken, trying next",
					zap.Uint("event_id", eventID),
					zap.Uint("stall_id", stall.ID),
				)
				continue
			}

			return domain.Booking{}, fmt.Errorf("s.repo.Book -> %w", err)
		}

		s.notifyBooking(ctx, domain.BookingCreated, booking)
		return booking, nil
	}

	return domain.Booking{}, ErrNoStallLeft
}

// CancelBooking releases the stall of an active booking. Builders may only
// cancel their own bookings.
func (s *BookingService) CancelBooking(ctx context.Context, actor domain.Actor, bookingID uint) (domain.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !actor.IsAdmin() && booking.BuilderID != actor.ID {
		return domain.Booking{}, ErrNotBookingOwner
	}
	if !booking.IsActive() {
		return domain.Booking{}, ErrBookingNotFound
	}

	cancelled, err := s.repo.Cancel(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.repo.Cancel -> %w", err)
	}

	s.notifyBooking(ctx, domain.BookingCanceled, cancelled)

	return cancelled, nil
}

func (s *BookingService) ListBuilderBookings(ctx context.Context, builderID uint) ([]domain.Booking, error) {
	bookings, err := s.repo.FindByBuilderID(ctx, builderID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByBuilderID -> %w", err)
	}

	return bookings, nil
}

func (s *BookingService) ListEventBookings(ctx context.Context, eventID uint) ([]domain.Booking, error) {
	bookings, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByEventID -> %w", err)
	}

	return bookings, nil
}

func (s *BookingService) notifyBooking(ctx context.Context, eventType domain.InventoryEventType, booking domain.Booking) {
	notify(ctx, s.notifier, domain.InventoryEvent{
		Type:      eventType,
		EventID:   booking.EventID,
		StallID:   uintPtr(booking.StallID),
		BookingID: uintPtr(booking.ID),
		BuilderID: uintPtr(booking.BuilderID),
	})
}
