package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/propexpo/stall-booking-api/internal/pkg/ledger"
)

var expoAllocations = []ledger.Allocation{
	{StallTypeID: 1, Quantity: 6},
	{StallTypeID: 2, Quantity: 3},
}

func TestCapacityService_RemainingCapacity(t *testing.T) {
	ctx := context.Background()
	repo := &mockCapacityRepo{}
	repo.On("Allocations", ctx, uint(5)).Return(10, expoAllocations, nil)

	svc := NewCapacityService(repo, nil)

	remaining, err := svc.RemainingCapacity(ctx, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	excluding := uint(1)
	remaining, err = svc.RemainingCapacity(ctx, 5, &excluding)
	require.NoError(t, err)
	assert.Equal(t, 7, remaining)

	ok, remaining, err := svc.CanAllocate(ctx, 5, 2, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, remaining)

	ok, _, err = svc.CanAllocate(ctx, 5, 7, &excluding)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCapacityService_UnknownEvent(t *testing.T) {
	ctx := context.Background()
	repo := &mockCapacityRepo{}
	repo.On("Allocations", ctx, uint(9)).Return(0, nil, fmt.Errorf("r.dao.Allocations -> %w", ErrEventNotFound))

	_, err := NewCapacityService(repo, nil).RemainingCapacity(ctx, 9, nil)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCapacityService_Cache(t *testing.T) {
	ctx := context.Background()

	t.Run("hit skips the database", func(t *testing.T) {
		repo := &mockCapacityRepo{}
		cache := &mockCache{}
		cache.On("GetRemaining", ctx, uint(5)).Return(4, true, nil)

		remaining, err := NewCapacityService(repo, cache).RemainingCapacity(ctx, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, 4, remaining)
		repo.AssertNotCalled(t, "Allocations", mock.Anything, mock.Anything)
	})

	t.Run("miss fills the cache", func(t *testing.T) {
		repo := &mockCapacityRepo{}
		repo.On("Allocations", ctx, uint(5)).Return(10, expoAllocations, nil)
		cache := &mockCache{}
		cache.On("GetRemaining", ctx, uint(5)).Return(0, false, nil)
		cache.On("Generation", ctx, uint(5)).Return(int64(3), nil)
		cache.On("SetRemaining", ctx, uint(5), int64(3), 1).Return(nil)

		remaining, err := NewCapacityService(repo, cache).RemainingCapacity(ctx, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, remaining)
		cache.AssertExpectations(t)
	})

	t.Run("cache failures fall back to the database", func(t *testing.T) {
		repo := &mockCapacityRepo{}
		repo.On("Allocations", ctx, uint(5)).Return(10, expoAllocations, nil)
		cache := &mockCache{}
		cache.On("GetRemaining", ctx, uint(5)).Return(0, false, errors.New("connection refused"))
		cache.On("Generation", ctx, uint(5)).Return(int64(0), nil)
		cache.On("SetRemaining", ctx, uint(5), int64(0), 1).Return(errors.New("connection refused"))

		remaining, err := NewCapacityService(repo, cache).RemainingCapacity(ctx, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, remaining)
	})

	t.Run("unknown generation skips the write", func(t *testing.T) {
		repo := &mockCapacityRepo{}
		repo.On("Allocations", ctx, uint(5)).Return(10, expoAllocations, nil)
		cache := &mockCache{}
		cache.On("GetRemaining", ctx, uint(5)).Return(0, false, nil)
		cache.On("Generation", ctx, uint(5)).Return(int64(0), errors.New("connection refused"))

		remaining, err := NewCapacityService(repo, cache).RemainingCapacity(ctx, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, remaining)
		cache.AssertNotCalled(t, "SetRemaining", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("excluded previews bypass the cache", func(t *testing.T) {
		repo := &mockCapacityRepo{}
		repo.On("Allocations", ctx, uint(5)).Return(10, expoAllocations, nil)
		cache := &mockCache{}

		excluding := uint(2)
		remaining, err := NewCapacityService(repo, cache).RemainingCapacity(ctx, 5, &excluding)
		require.NoError(t, err)
		assert.Equal(t, 4, remaining)
		cache.AssertNotCalled(t, "GetRemaining", mock.Anything, mock.Anything)
	})
}

func TestCapacityService_InvalidatedDuringRead(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()

	var (
		svc         *CapacityService
		allocations []ledger.Allocation
		written     bool
	)
	repo := capacityRepoFunc(func(ctx context.Context, eventID uint) (int, []ledger.Allocation, error) {
		snapshot := append([]ledger.Allocation(nil), allocations...)
		if !written {
			// a stall type commits after this read took its snapshot
			written = true
			allocations = append(allocations, ledger.Allocation{StallTypeID: 1, Quantity: 6})
			svc.Invalidate(ctx, eventID)
		}
		return 10, snapshot, nil
	})
	svc = NewCapacityService(repo, cache)

	remaining, err := svc.RemainingCapacity(ctx, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)

	_, ok, _ := cache.GetRemaining(ctx, 5)
	assert.False(t, ok, "a figure read before the invalidation must not be cached")

	remaining, err = svc.RemainingCapacity(ctx, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)

	cached, ok, _ := cache.GetRemaining(ctx, 5)
	assert.True(t, ok)
	assert.Equal(t, 4, cached)
}
