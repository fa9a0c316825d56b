package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/propexpo/stall-booking-api/internal/domain"
)

type StallTypeRepository interface {
	CreateStallType(ctx context.Context, stallType domain.StallType) (domain.StallTypeAllocation, error)
	UpdateStallType(ctx context.Context, id uint, update domain.StallTypeUpdate) (domain.StallTypeAllocation, error)
	DeleteStallType(ctx context.Context, id uint, force bool) (domain.StallType, []domain.Booking, error)
	FindStallTypeByID(ctx context.Context, id uint) (domain.StallType, error)
	ListStallTypes(ctx context.Context, eventID uint) ([]domain.StallTypeSummary, error)
}

type StallTypeService struct {
	repo     StallTypeRepository
	capacity *CapacityService
	notifier Notifier
}

func NewStallTypeService(repo StallTypeRepository, capacity *CapacityService, notifier Notifier) *StallTypeService {
	return &StallTypeService{
		repo:     repo,
		capacity: capacity,
		notifier: notifier,
	}
}

func (s *StallTypeService) CreateStallType(ctx context.Context, stallType domain.StallType) (domain.StallTypeAllocation, error) {
	stallType.Name = strings.TrimSpace(stallType.Name)

	err := validation.ValidateStruct(&stallType,
		validation.Field(&stallType.EventID, validation.Required),
		validation.Field(&stallType.Name, validation.Required),
		validation.Field(&stallType.UnitPrice, validation.Min(0.0)),
		validation.Field(&stallType.Quantity, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return domain.StallTypeAllocation{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	created, err := s.repo.CreateStallType(ctx, stallType)
	if err != nil {
		return domain.StallTypeAllocation{}, fmt.Errorf("s.repo.CreateStallType -> %w", err)
	}

	s.capacity.Invalidate(ctx, created.StallType.EventID)
	notify(ctx, s.notifier, domain.InventoryEvent{
		Type:        domain.StallTypeCreated,
		EventID:     created.StallType.EventID,
		StallTypeID: uintPtr(created.StallType.ID),
		Remaining:   intPtr(created.RemainingCapacity),
	})

	return created, nil
}

func (s *StallTypeService) UpdateStallType(ctx context.Context, id uint, update domain.StallTypeUpdate) (domain.StallTypeAllocation, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		update.Name = &name
	}

	if err := validateStallTypeUpdate(update); err != nil {
		return domain.StallTypeAllocation{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	updated, err := s.repo.UpdateStallType(ctx, id, update)
	if err != nil {
		return domain.StallTypeAllocation{}, fmt.Errorf("s.repo.UpdateStallType -> %w", err)
	}

	s.capacity.Invalidate(ctx, updated.StallType.EventID)
	notify(ctx, s.notifier, domain.InventoryEvent{
		Type:        domain.StallTypeUpdated,
		EventID:     updated.StallType.EventID,
		StallTypeID: uintPtr(updated.StallType.ID),
		Remaining:   intPtr(updated.RemainingCapacity),
	})

	return updated, nil
}

// DeleteStallType removes the type and its stalls. With force, active bookings
// on those stalls are cancelled and returned; without it they block deletion.
func (s *StallTypeService) DeleteStallType(ctx context.Context, id uint, force bool) (domain.StallType, []domain.Booking, error) {
	deleted, cancelled, err := s.repo.DeleteStallType(ctx, id, force)
	if err != nil {
		return domain.StallType{}, nil, fmt.Errorf("s.repo.DeleteStallType -> %w", err)
	}

	s.capacity.Invalidate(ctx, deleted.EventID)

	for _, b := range cancelled {
		notify(ctx, s.notifier, domain.InventoryEvent{
			Type:      domain.BookingCanceled,
			EventID:   b.EventID,
			StallID:   uintPtr(b.StallID),
			BookingID: uintPtr(b.ID),
			BuilderID: uintPtr(b.BuilderID),
		})
	}
	notify(ctx, s.notifier, domain.InventoryEvent{
		Type:        domain.StallTypeDeleted,
		EventID:     deleted.EventID,
		StallTypeID: uintPtr(deleted.ID),
	})

	return deleted, cancelled, nil
}

func (s *StallTypeService) GetStallType(ctx context.Context, id uint) (domain.StallType, error) {
	stallType, err := s.repo.FindStallTypeByID(ctx, id)
	if err != nil {
		return domain.StallType{}, fmt.Errorf("s.repo.FindStallTypeByID -> %w", err)
	}

	return stallType, nil
}

func (s *StallTypeService) ListStallTypes(ctx context.Context, eventID uint) ([]domain.StallTypeSummary, error) {
	types, err := s.repo.ListStallTypes(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListStallTypes -> %w", err)
	}

	return types, nil
}

func validateStallTypeUpdate(update domain.StallTypeUpdate) error {
	if update.Name == nil && update.UnitPrice == nil && update.Quantity == nil {
		return errors.New("nothing to update")
	}

	return validation.ValidateStruct(&update,
		validation.Field(&update.Name, validation.NilOrNotEmpty),
		validation.Field(&update.UnitPrice, validation.Min(0.0)),
		validation.Field(&update.Quantity, validation.NilOrNotEmpty, validation.Min(1)),
	)
}
