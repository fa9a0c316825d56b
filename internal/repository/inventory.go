package repository

import (
	"context"
	"fmt"

	"github.com/propexpo/stall-booking-api/internal/domain"
	"github.com/propexpo/stall-booking-api/internal/pkg/ledger"
	"github.com/propexpo/stall-booking-api/internal/repository/dao"
)

type InventoryDAO interface {
	Allocations(ctx context.Context, eventID uint) (dao.Event, []ledger.Allocation, error)
	InsertStallType(ctx context.Context, stallType dao.StallType) (dao.StallType, int, error)
	UpdateStallType(ctx context.Context, id uint, changes dao.StallTypeChanges) (dao.StallType, int, error)
	DeleteStallType(ctx context.Context, id uint, force bool) (dao.StallType, []dao.Booking, error)
	FindStallTypeByID(ctx context.Context, id uint) (dao.StallType, error)
	ListStallTypes(ctx context.Context, eventID uint) ([]dao.StallTypeCounts, error)
	FindStallByID(ctx context.Context, id uint) (dao.Stall, error)
	FindStalls(ctx context.Context, eventID uint, stallTypeID *uint, status string) ([]dao.Stall, error)
}

type InventoryRepository struct {
	dao InventoryDAO
}

func NewInventoryRepository(dao InventoryDAO) *InventoryRepository {
	return &InventoryRepository{
		dao: dao,
	}
}

// Allocations returns the event's stall count and the quantity held by each of
// its stall types.
func (r *InventoryRepository) Allocations(ctx context.Context, eventID uint) (int, []ledger.Allocation, error) {
	event, allocations, err := r.dao.Allocations(ctx, eventID)
	if err != nil {
		return 0, nil, fmt.Errorf("r.dao.Allocations -> %w", err)
	}

	return event.StallCount, allocations, nil
}

func (r *InventoryRepository) CreateStallType(ctx context.Context, stallType domain.StallType) (domain.StallTypeAllocation, error) {
	created, remaining, err := r.dao.InsertStallType(ctx, dao.StallType{
		EventID:   stallType.EventID,
		Name:      stallType.Name,
		UnitPrice: stallType.UnitPrice,
		Quantity:  stallType.Quantity,
	})
	if err != nil {
		return domain.StallTypeAllocation{}, fmt.Errorf("r.dao.InsertStallType -> %w", err)
	}

	return domain.StallTypeAllocation{
		StallType:         stallTypeDaoToDomain(created),
		RemainingCapacity: remaining,
	}, nil
}

func (r *InventoryRepository) UpdateStallType(ctx context.Context, id uint, update domain.StallTypeUpdate) (domain.StallTypeAllocation, error) {
	updated, remaining, err := r.dao.UpdateStallType(ctx, id, dao.StallTypeChanges{
		Name:      update.Name,
		UnitPrice: update.UnitPrice,
		Quantity:  update.Quantity,
	})
	if err != nil {
		return domain.StallTypeAllocation{}, fmt.Errorf("r.dao.UpdateStallType -> %w", err)
	}

	return domain.StallTypeAllocation{
		StallType:         stallTypeDaoToDomain(updated),
		RemainingCapacity: remaining,
	}, nil
}

func (r *InventoryRepository) DeleteStallType(ctx context.Context, id uint, force bool) (domain.StallType, []domain.Booking, error) {
	deleted, cancelled, err := r.dao.DeleteStallType(ctx, id, force)
	if err != nil {
		return domain.StallType{}, nil, fmt.Errorf("r.dao.DeleteStallType -> %w", err)
	}

	return stallTypeDaoToDomain(deleted), bookingsDaoToDomain(cancelled), nil
}

func (r *InventoryRepository) FindStallTypeByID(ctx context.Context, id uint) (domain.StallType, error) {
	found, err := r.dao.FindStallTypeByID(ctx, id)
	if err != nil {
		return domain.StallType{}, fmt.Errorf("r.dao.FindStallTypeByID -> %w", err)
	}

	return stallTypeDaoToDomain(found), nil
}

func (r *InventoryRepository) ListStallTypes(ctx context.Context, eventID uint) ([]domain.StallTypeSummary, error) {
	found, err := r.dao.ListStallTypes(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListStallTypes -> %w", err)
	}

	summaries := make([]domain.StallTypeSummary, len(found))
	for i, t := range found {
		summaries[i] = domain.StallTypeSummary{
			StallType: stallTypeDaoToDomain(t.StallType),
			Booked:    t.Booked,
			Available: t.Available,
		}
	}

	return summaries, nil
}

func (r *InventoryRepository) FindStallByID(ctx context.Context, id uint) (domain.Stall, error) {
	found, err := r.dao.FindStallByID(ctx, id)
	if err != nil {
		return domain.Stall{}, fmt.Errorf("r.dao.FindStallByID -> %w", err)
	}

	return stallDaoToDomain(found), nil
}

func (r *InventoryRepository) ListAvailableStalls(ctx context.Context, eventID uint, stallTypeID *uint) ([]domain.Stall, error) {
	found, err := r.dao.FindStalls(ctx, eventID, stallTypeID, dao.StallStatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindStalls -> %w", err)
	}

	stalls := make([]domain.Stall, len(found))
	for i, s := range found {
		stalls[i] = stallDaoToDomain(s)
	}

	return stalls, nil
}

func stallTypeDaoToDomain(t dao.StallType) domain.StallType {
	return domain.StallType{
		ID:        t.ID,
		EventID:   t.EventID,
		Name:      t.Name,
		UnitPrice: t.UnitPrice,
		Quantity:  t.Quantity,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func stallDaoToDomain(s dao.Stall) domain.Stall {
	return domain.Stall{
		ID:          s.ID,
		StallTypeID: s.StallTypeID,
		EventID:     s.EventID,
		StallNumber: s.StallNumber,
		Status:      domain.StallStatus(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
