package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/propexpo/stall-booking-api/internal/pkg/ledger"
)

type CapacityRepository interface {
	Allocations(ctx context.Context, eventID uint) (int, []ledger.Allocation, error)
}

// CapacityCache holds the un-excluded remaining capacity of events. Every
// Invalidate bumps the event's generation, and SetRemaining only stores a
// figure computed under the generation it was given.
type CapacityCache interface {
	GetRemaining(ctx context.Context, eventID uint) (int, bool, error)
	Generation(ctx context.Context, eventID uint) (int64, error)
	SetRemaining(ctx context.Context, eventID uint, generation int64, remaining int) error
	Invalidate(ctx context.Context, eventID uint) error
}

// CapacityService answers how much of an event's stall count is still free.
// It is a preview only: every write re-checks under the event lock.
type CapacityService struct {
	repo  CapacityRepository
	cache CapacityCache
}

// NewCapacityService accepts a nil cache.
func NewCapacityService(repo CapacityRepository, cache CapacityCache) *CapacityService {
	return &CapacityService{
		repo:  repo,
		cache: cache,
	}
}

func (s *CapacityService) RemainingCapacity(ctx context.Context, eventID uint, excluding *uint) (int, error) {
	cacheable := excluding == nil && s.cache != nil

	var generation int64
	if cacheable {
		remaining, ok, err := s.cache.GetRemaining(ctx, eventID)
		if err != nil {
			zap.L().Warn("capacity cache read failed", zap.Uint("event_id", eventID), zap.Error(err))
		} else if ok {
			return remaining, nil
		}

		// taken before the database read so an invalidation landing in
		// between keeps this figure out of the cache
		generation, err = s.cache.Generation(ctx, eventID)
		if err != nil {
			zap.L().Warn("capacity cache read failed", zap.Uint("event_id", eventID), zap.Error(err))
			cacheable = false
		}
	}

	stallCount, allocations, err := s.repo.Allocations(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("s.repo.Allocations -> %w", err)
	}

	var excluded uint
	if excluding != nil {
		excluded = *excluding
	}
	remaining := ledger.Remaining(stallCount, allocations, excluded)

	if cacheable {
		if err := s.cache.SetRemaining(ctx, eventID, generation, remaining); err != nil {
			zap.L().Warn("capacity cache write failed", zap.Uint("event_id", eventID), zap.Error(err))
		}
	}

	return remaining, nil
}

// CanAllocate reports whether quantity fits, along with the remaining capacity
// it was measured against.
func (s *CapacityService) CanAllocate(ctx context.Context, eventID uint, quantity int, excluding *uint) (bool, int, error) {
	remaining, err := s.RemainingCapacity(ctx, eventID, excluding)
	if err != nil {
		return false, 0, err
	}

	return quantity <= remaining, remaining, nil
}

// Invalidate drops the cached figure after a committed capacity change.
func (s *CapacityService) Invalidate(ctx context.Context, eventID uint) {
	if s == nil || s.cache == nil {
		return
	}

	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		zap.L().Warn("capacity cache invalidation failed", zap.Uint("event_id", eventID), zap.Error(err))
	}
}
