package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/propexpo/stall-booking-api/internal/domain"
	"github.com/propexpo/stall-booking-api/internal/pkg/ledger"
)

type mockCapacityRepo struct{ mock.Mock }

func (m *mockCapacityRepo) Allocations(ctx context.Context, eventID uint) (int, []ledger.Allocation, error) {
	args := m.Called(ctx, eventID)
	allocations, _ := args.Get(1).([]ledger.Allocation)
	return args.Int(0), allocations, args.Error(2)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) GetRemaining(ctx context.Context, eventID uint) (int, bool, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *mockCache) Generation(ctx context.Context, eventID uint) (int64, error) {
	args := m.Called(ctx, eventID)
	generation, _ := args.Get(0).(int64)
	return generation, args.Error(1)
}

func (m *mockCache) SetRemaining(ctx context.Context, eventID uint, generation int64, remaining int) error {
	return m.Called(ctx, eventID, generation, remaining).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, eventID uint) error {
	return m.Called(ctx, eventID).Error(0)
}

// memoryCache keeps the generation rule of the redis cache without a server.
type memoryCache struct {
	mu          sync.Mutex
	remaining   map[uint]int
	generations map[uint]int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		remaining:   make(map[uint]int),
		generations: make(map[uint]int64),
	}
}

func (c *memoryCache) GetRemaining(_ context.Context, eventID uint) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	remaining, ok := c.remaining[eventID]
	return remaining, ok, nil
}

func (c *memoryCache) Generation(_ context.Context, eventID uint) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[eventID], nil
}

func (c *memoryCache) SetRemaining(_ context.Context, eventID uint, generation int64, remaining int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[eventID] == generation {
		c.remaining[eventID] = remaining
	}
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, eventID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[eventID]++
	delete(c.remaining, eventID)
	return nil
}

type capacityRepoFunc func(ctx context.Context, eventID uint) (int, []ledger.Allocation, error)

func (f capacityRepoFunc) Allocations(ctx context.Context, eventID uint) (int, []ledger.Allocation, error) {
	return f(ctx, eventID)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Publish(ctx context.Context, event domain.InventoryEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockNotifier) published() []domain.InventoryEvent {
	var events []domain.InventoryEvent
	for _, call := range m.Calls {
		if call.Method == "Publish" {
			events = append(events, call.Arguments.Get(1).(domain.InventoryEvent))
		}
	}
	return events
}

type mockStallTypeRepo struct{ mock.Mock }

func (m *mockStallTypeRepo) CreateStallType(ctx context.Context, stallType domain.StallType) (domain.StallTypeAllocation, error) {
	args := m.Called(ctx, stallType)
	return args.Get(0).(domain.StallTypeAllocation), args.Error(1)
}

func (m *mockStallTypeRepo) UpdateStallType(ctx context.Context, id uint, update domain.StallTypeUpdate) (domain.StallTypeAllocation, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.StallTypeAllocation), args.Error(1)
}

func (m *mockStallTypeRepo) DeleteStallType(ctx context.Context, id uint, force bool) (domain.StallType, []domain.Booking, error) {
	args := m.Called(ctx, id, force)
	bookings, _ := args.Get(1).([]domain.Booking)
	return args.Get(0).(domain.StallType), bookings, args.Error(2)
}

func (m *mockStallTypeRepo) FindStallTypeByID(ctx context.Context, id uint) (domain.StallType, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.StallType), args.Error(1)
}

func (m *mockStallTypeRepo) ListStallTypes(ctx context.Context, eventID uint) ([]domain.StallTypeSummary, error) {
	args := m.Called(ctx, eventID)
	types, _ := args.Get(0).([]domain.StallTypeSummary)
	return types, args.Error(1)
}

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) Book(ctx context.Context, stallID, builderID uint) (domain.Booking, error) {
	args := m.Called(ctx, stallID, builderID)
	return args.Get(0).(domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) Cancel(ctx context.Context, id uint) (domain.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id uint) (domain.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) FindActiveByStallID(ctx context.Context, stallID uint) (domain.Booking, error) {
	args := m.Called(ctx, stallID)
	return args.Get(0).(domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) FindByBuilderID(ctx context.Context, builderID uint) ([]domain.Booking, error) {
	args := m.Called(ctx, builderID)
	bookings, _ := args.Get(0).([]domain.Booking)
	return bookings, args.Error(1)
}

func (m *mockBookingRepo) FindByEventID(ctx context.Context, eventID uint) ([]domain.Booking, error) {
	args := m.Called(ctx, eventID)
	bookings, _ := args.Get(0).([]domain.Booking)
	return bookings, args.Error(1)
}

type mockStallRepo struct{ mock.Mock }

func (m *mockStallRepo) FindStallByID(ctx context.Context, id uint) (domain.Stall, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Stall), args.Error(1)
}

func (m *mockStallRepo) ListAvailableStalls(ctx context.Context, eventID uint, stallTypeID *uint) ([]domain.Stall, error) {
	args := m.Called(ctx, eventID, stallTypeID)
	stalls, _ := args.Get(0).([]domain.Stall)
	return stalls, args.Error(1)
}

type mockEventRepo struct{ mock.Mock }

func (m *mockEventRepo) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *mockEventRepo) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *mockEventRepo) FindAll(ctx context.Context, endingAfter *time.Time) ([]domain.Event, error) {
	args := m.Called(ctx, endingAfter)
	events, _ := args.Get(0).([]domain.Event)
	return events, args.Error(1)
}

func (m *mockEventRepo) Update(ctx context.Context, id uint, update domain.EventUpdate) (domain.Event, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *mockEventRepo) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockEventRepo) Inventory(ctx context.Context, id uint) (domain.EventInventory, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.EventInventory), args.Error(1)
}
