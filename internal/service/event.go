package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/jinzhu/now"

	"github.com/propexpo/stall-booking-api/internal/domain"
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindAll(ctx context.Context, endingAfter *time.Time) ([]domain.Event, error)
	Update(ctx context.Context, id uint, update domain.EventUpdate) (domain.Event, error)
	Delete(ctx context.Context, id uint) error
	Inventory(ctx context.Context, id uint) (domain.EventInventory, error)
}

var errEndBeforeStart = errors.New("end_date must not be before start_date")

type EventService struct {
	repo     EventRepository
	capacity *CapacityService
	notifier Notifier

	clock func() time.Time
}

func NewEventService(repo EventRepository, capacity *CapacityService, notifier Notifier) *EventService {
	return &EventService{
		repo:     repo,
		capacity: capacity,
		notifier: notifier,
		clock:    time.Now,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	if err := validateEvent(event); err != nil {
		return domain.Event{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// UpdateEvent edits an event. Lowering stall_count below what its stall types
// already hold fails with *CapacityExceededError.
func (s *EventService) UpdateEvent(ctx context.Context, id uint, update domain.EventUpdate) (domain.Event, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err := validateEvent(applyEventUpdate(current, update)); err != nil {
		return domain.Event{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	if update.StallCount != nil {
		s.capacity.Invalidate(ctx, id)
	}
	notify(ctx, s.notifier, domain.InventoryEvent{
		Type:    domain.EventUpdated,
		EventID: id,
	})

	return updated, nil
}

func (s *EventService) GetEventInventory(ctx context.Context, id uint) (domain.EventInventory, error) {
	inventory, err := s.repo.Inventory(ctx, id)
	if err != nil {
		return domain.EventInventory{}, fmt.Errorf("s.repo.Inventory -> %w", err)
	}

	return inventory, nil
}

// ListEvents lists all events, or with upcomingOnly the ones that have not
// ended before today.
func (s *EventService) ListEvents(ctx context.Context, upcomingOnly bool) ([]domain.Event, error) {
	var endingAfter *time.Time
	if upcomingOnly {
		today := now.With(s.clock()).BeginningOfDay()
		endingAfter = &today
	}

	events, err := s.repo.FindAll(ctx, endingAfter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return events, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.capacity.Invalidate(ctx, id)

	return nil
}

func validateEvent(event domain.Event) error {
	err := validation.ValidateStruct(&event,
		validation.Field(&event.Name, validation.Required),
		validation.Field(&event.Location, validation.Required),
		validation.Field(&event.StallCount, validation.Min(0)),
		validation.Field(&event.StartDate, validation.Required),
		validation.Field(&event.EndDate, validation.Required),
	)
	if err != nil {
		return err
	}

	if event.EndDate.Before(event.StartDate) {
		return errEndBeforeStart
	}

	return nil
}

func applyEventUpdate(event domain.Event, update domain.EventUpdate) domain.Event {
	if update.Name != nil {
		event.Name = *update.Name
	}
	if update.Description != nil {
		event.Description = *update.Description
	}
	if update.Location != nil {
		event.Location = *update.Location
	}
	if update.StallCount != nil {
		event.StallCount = *update.StallCount
	}
	if update.StartDate != nil {
		event.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		event.EndDate = *update.EndDate
	}

	return event
}
