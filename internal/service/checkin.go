package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/propexpo/stall-booking-api/internal/domain"
	"github.com/propexpo/stall-booking-api/internal/pkg/checkinref"
)

type ReferenceIssuer interface {
	Stall(eventID, stallID uint) (string, string, error)
	Event(eventID uint) (string, string, error)
	Parse(referenceOrURL string) (checkinref.Target, error)
}

type EventFinder interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
}

type CheckInService struct {
	events   EventFinder
	stalls   StallRepository
	bookings BookingRepository
	issuer   ReferenceIssuer
}

func NewCheckInService(events EventFinder, stalls StallRepository, bookings BookingRepository, issuer ReferenceIssuer) *CheckInService {
	return &CheckInService{
		events:   events,
		stalls:   stalls,
		bookings: bookings,
		issuer:   issuer,
	}
}

// IssueStallCheckIn computes the check-in reference of a stall. Nothing is
// stored; asking again returns the same reference. Builders only get
// references for stalls they hold.
func (s *CheckInService) IssueStallCheckIn(ctx context.Context, actor domain.Actor, eventID, stallID uint) (domain.CheckInReference, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return domain.CheckInReference{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	stall, err := s.stalls.FindStallByID(ctx, stallID)
	if err != nil {
		return domain.CheckInReference{}, fmt.Errorf("s.stalls.FindStallByID -> %w", err)
	}
	if stall.EventID != eventID {
		return domain.CheckInReference{}, ErrStallNotFound
	}

	if !actor.IsAdmin() {
		booking, err := s.bookings.FindActiveByStallID(ctx, stallID)
		if err != nil {
			if errors.Is(err, ErrBookingNotFound) {
				return domain.CheckInReference{}, ErrNotBookingOwner
			}
			return domain.CheckInReference{}, fmt.Errorf("s.bookings.FindActiveByStallID -> %w", err)
		}
		if booking.BuilderID != actor.ID {
			return domain.CheckInReference{}, ErrNotBookingOwner
		}
	}

	ref, link, err := s.issuer.Stall(eventID, stallID)
	if err != nil {
		return domain.CheckInReference{}, fmt.Errorf("s.issuer.Stall -> %w", err)
	}

	return domain.CheckInReference{
		Scope:     domain.CheckInStall,
		EventID:   eventID,
		StallID:   uintPtr(stallID),
		Reference: ref,
		URL:       link,
	}, nil
}

func (s *CheckInService) IssueEventCheckIn(ctx context.Context, eventID uint) (domain.CheckInReference, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return domain.CheckInReference{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	ref, link, err := s.issuer.Event(eventID)
	if err != nil {
		return domain.CheckInReference{}, fmt.Errorf("s.issuer.Event -> %w", err)
	}

	return domain.CheckInReference{
		Scope:     domain.CheckInEvent,
		EventID:   eventID,
		Reference: ref,
		URL:       link,
	}, nil
}

// Resolve turns a scanned reference or URL back into its event and stall.
// References to events or stalls that no longer exist, or to a stall that now
// belongs to another event, are invalid.
func (s *CheckInService) Resolve(ctx context.Context, referenceOrURL string) (domain.CheckInTarget, error) {
	target, err := s.issuer.Parse(referenceOrURL)
	if err != nil {
		return domain.CheckInTarget{}, fmt.Errorf("s.issuer.Parse -> %w", err)
	}

	event, err := s.events.FindByID(ctx, target.EventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return domain.CheckInTarget{}, fmt.Errorf("%w: event %d no longer exists", ErrInvalidReference, target.EventID)
		}
		return domain.CheckInTarget{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	if target.Scope == checkinref.ScopeEvent {
		return domain.CheckInTarget{Scope: domain.CheckInEvent, Event: event}, nil
	}

	stall, err := s.stalls.FindStallByID(ctx, target.StallID)
	if err != nil {
		if errors.Is(err, ErrStallNotFound) {
			return domain.CheckInTarget{}, fmt.Errorf("%w: stall %d no longer exists", ErrInvalidReference, target.StallID)
		}
		return domain.CheckInTarget{}, fmt.Errorf("s.stalls.FindStallByID -> %w", err)
	}
	if stall.EventID != event.ID {
		return domain.CheckInTarget{}, fmt.Errorf("%w: stall %d is not part of event %d", ErrInvalidReference, stall.ID, event.ID)
	}

	resolved := domain.CheckInTarget{
		Scope: domain.CheckInStall,
		Event: event,
		Stall: &stall,
	}

	booking, err := s.bookings.FindActiveByStallID(ctx, stall.ID)
	switch {
	case err == nil:
		resolved.Booking = &booking
	case !errors.Is(err, ErrBookingNotFound):
		return domain.CheckInTarget{}, fmt.Errorf("s.bookings.FindActiveByStallID -> %w", err)
	}

	return resolved, nil
}
