package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propexpo/stall-booking-api/internal/domain"
	"github.com/propexpo/stall-booking-api/internal/repository/dao"
)

type fakeEventDAO struct {
	EventDAO

	event    dao.Event
	counters dao.EventCounters
	err      error
}

func (f *fakeEventDAO) FindByID(_ context.Context, id uint) (dao.Event, error) {
	if f.err != nil {
		return dao.Event{}, f.err
	}
	if id != f.event.ID {
		return dao.Event{}, dao.ErrEventNotFound
	}

	return f.event, nil
}

func (f *fakeEventDAO) Counters(_ context.Context, _ uint) (dao.EventCounters, error) {
	return f.counters, nil
}

func (f *fakeEventDAO) Update(_ context.Context, _ uint, _ dao.EventChanges) (dao.Event, error) {
	return dao.Event{}, &dao.CapacityExceededError{By: 2, Remaining: 0}
}

func TestEventRepository_Inventory(t *testing.T) {
	start := time.Date(2026, 11, 20, 9, 0, 0, 0, time.UTC)
	repo := NewEventRepository(&fakeEventDAO{
		event: dao.Event{ID: 3, Name: "Property Expo", StallCount: 10, StartDate: start, EndDate: start},
		counters: dao.EventCounters{
			Allocated: 7,
			Booked:    2,
			Available: 5,
		},
	})

	inventory, err := repo.Inventory(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, uint(3), inventory.Event.ID)
	assert.Equal(t, "Property Expo", inventory.Event.Name)
	assert.Equal(t, 7, inventory.Allocated)
	assert.Equal(t, 3, inventory.Remaining)
	assert.Equal(t, 2, inventory.Booked)
	assert.Equal(t, 5, inventory.Available)

	_, err = repo.Inventory(context.Background(), 4)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventRepository_UpdateKeepsTypedErrors(t *testing.T) {
	repo := NewEventRepository(&fakeEventDAO{})

	stallCount := 1
	_, err := repo.Update(context.Background(), 1, domain.EventUpdate{StallCount: &stallCount})

	var capErr *CapacityExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.By)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Contains(t, err.Error(), "r.dao.Update -> ")
}
