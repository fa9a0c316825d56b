package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/propexpo/stall-booking-api/internal/domain"
	"github.com/propexpo/stall-booking-api/internal/repository/dao"
)

var (
	ErrEventNotFound     = dao.ErrEventNotFound
	ErrStallTypeNotFound = dao.ErrStallTypeNotFound
	ErrStallNotFound     = dao.ErrStallNotFound
	ErrBookingNotFound   = dao.ErrBookingNotFound
	ErrAlreadyBooked     = dao.ErrAlreadyBooked
	ErrBookingsChanged   = dao.ErrBookingsChanged

	ErrCapacityExceeded            = dao.ErrCapacityExceeded
	ErrInsufficientAvailableStalls = dao.ErrInsufficientAvailableStalls
	ErrHasActiveBookings           = dao.ErrHasActiveBookings
)

type (
	CapacityExceededError            = dao.CapacityExceededError
	InsufficientAvailableStallsError = dao.InsufficientAvailableStallsError
	HasActiveBookingsError           = dao.HasActiveBookingsError
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindAll(ctx context.Context, endingAfter *time.Time) ([]dao.Event, error)
	Update(ctx context.Context, id uint, changes dao.EventChanges) (dao.Event, error)
	Delete(ctx context.Context, id uint) error
	Counters(ctx context.Context, id uint) (dao.EventCounters, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, dao.Event{
		Name:        event.Name,
		Description: event.Description,
		Location:    event.Location,
		StallCount:  event.StallCount,
		StartDate:   event.StartDate,
		EndDate:     event.EndDate,
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindAll(ctx context.Context, endingAfter *time.Time) ([]domain.Event, error) {
	found, err := r.dao.FindAll(ctx, endingAfter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	events := make([]domain.Event, len(found))
	for i, e := range found {
		events[i] = r.daoToDomain(e)
	}

	return events, nil
}

func (r *EventRepository) Update(ctx context.Context, id uint, update domain.EventUpdate) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, id, dao.EventChanges{
		Name:        update.Name,
		Description: update.Description,
		Location:    update.Location,
		StallCount:  update.StallCount,
		StartDate:   update.StartDate,
		EndDate:     update.EndDate,
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *EventRepository) Inventory(ctx context.Context, id uint) (domain.EventInventory, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.EventInventory{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	counters, err := r.dao.Counters(ctx, id)
	if err != nil {
		return domain.EventInventory{}, fmt.Errorf("r.dao.Counters -> %w", err)
	}

	return domain.EventInventory{
		Event:     r.daoToDomain(found),
		Allocated: counters.Allocated,
		Remaining: found.StallCount - counters.Allocated,
		Booked:    counters.Booked,
		Available: counters.Available,
	}, nil
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Location:    e.Location,
		StallCount:  e.StallCount,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
