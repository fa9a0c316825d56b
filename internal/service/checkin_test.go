package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propexpo/stall-booking-api/internal/domain"
	"github.com/propexpo/stall-booking-api/internal/pkg/checkinref"
)

type checkInFixture struct {
	events   *mockEventRepo
	stalls   *mockStallRepo
	bookings *mockBookingRepo
	svc      *CheckInService
}

func newCheckInFixture() checkInFixture {
	f := checkInFixture{
		events:   &mockEventRepo{},
		stalls:   &mockStallRepo{},
		bookings: &mockBookingRepo{},
	}
	issuer := checkinref.NewIssuer([]byte("checkin-secret"), "stall-booking-api", "https://expo.example.com")
	f.svc = NewCheckInService(f.events, f.stalls, f.bookings, issuer)

	return f
}

var (
	admin   = domain.Actor{ID: 1, Role: domain.RoleAdmin}
	builder = domain.Actor{ID: 7, Role: domain.RoleBuilder}
)

func TestCheckInService_IssueStallCheckIn(t *testing.T) {
	ctx := context.Background()

	f := newCheckInFixture()
	f.events.On("FindByID", ctx, uint(5)).Return(domain.Event{ID: 5}, nil)
	f.stalls.On("FindStallByID", ctx, uint(42)).Return(domain.Stall{ID: 42, EventID: 5}, nil)
	f.bookings.On("FindActiveByStallID", ctx, uint(42)).Return(domain.Booking{ID: 3, StallID: 42, BuilderID: 7}, nil)

	first, err := f.svc.IssueStallCheckIn(ctx, builder, 5, 42)
	require.NoError(t, err)
	second, err := f.svc.IssueStallCheckIn(ctx, admin, 5, 42)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.CheckInStall, first.Scope)
	assert.Equal(t, uint(42), *first.StallID)
	assert.Equal(t, "https://expo.example.com/buyer-dashboard/stall-checkin/5/42?ref="+first.Reference, first.URL)

	_, err = f.svc.IssueStallCheckIn(ctx, domain.Actor{ID: 8, Role: domain.RoleBuilder}, 5, 42)
	assert.ErrorIs(t, err, ErrNotBookingOwner)
}

func TestCheckInService_IssueStallCheckIn_NotFound(t *testing.T) {
	ctx := context.Background()

	f := newCheckInFixture()
	f.events.On("FindByID", ctx, uint(5)).Return(domain.Event{ID: 5}, nil)
	f.events.On("FindByID", ctx, uint(6)).Return(domain.Event{}, ErrEventNotFound)
	f.stalls.On("FindStallByID", ctx, uint(42)).Return(domain.Stall{ID: 42, EventID: 9}, nil)
	f.stalls.On("FindStallByID", ctx, uint(43)).Return(domain.Stall{}, ErrStallNotFound)

	_, err := f.svc.IssueStallCheckIn(ctx, admin, 6, 42)
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = f.svc.IssueStallCheckIn(ctx, admin, 5, 42)
	assert.ErrorIs(t, err, ErrStallNotFound)

	_, err = f.svc.IssueStallCheckIn(ctx, admin, 5, 43)
	assert.ErrorIs(t, err, ErrStallNotFound)
}

func TestCheckInService_Resolve(t *testing.T) {
	ctx := context.Background()
	event := domain.Event{ID: 5, Name: "Property Expo"}

	f := newCheckInFixture()
	f.events.On("FindByID", ctx, uint(5)).Return(event, nil)
	f.stalls.On("FindStallByID", ctx, uint(42)).Return(domain.Stall{ID: 42, EventID: 5, StallNumber: 12}, nil)
	f.stalls.On("FindStallByID", ctx, uint(43)).Return(domain.Stall{ID: 43, EventID: 5, StallNumber: 13}, nil)
	f.bookings.On("FindActiveByStallID", ctx, uint(42)).Return(domain.Booking{ID: 3, StallID: 42, BuilderID: 7}, nil)
	f.bookings.On("FindActiveByStallID", ctx, uint(43)).Return(domain.Booking{}, ErrBookingNotFound)

	booked, err := f.svc.IssueStallCheckIn(ctx, admin, 5, 42)
	require.NoError(t, err)

	target, err := f.svc.Resolve(ctx, booked.URL)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckInStall, target.Scope)
	assert.Equal(t, event, target.Event)
	assert.Equal(t, 12, target.Stall.StallNumber)
	require.NotNil(t, target.Booking)
	assert.Equal(t, uint(7), target.Booking.BuilderID)

	free, err := f.svc.IssueStallCheckIn(ctx, admin, 5, 43)
	require.NoError(t, err)

	target, err = f.svc.Resolve(ctx, free.Reference)
	require.NoError(t, err)
	assert.Nil(t, target.Booking)

	whole, err := f.svc.IssueEventCheckIn(ctx, 5)
	require.NoError(t, err)

	target, err = f.svc.Resolve(ctx, whole.URL)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckInEvent, target.Scope)
	assert.Nil(t, target.Stall)
}

func TestCheckInService_Resolve_Stale(t *testing.T) {
	ctx := context.Background()
	issuer := checkinref.NewIssuer([]byte("checkin-secret"), "stall-booking-api", "https://expo.example.com")

	f := newCheckInFixture()
	f.events.On("FindByID", ctx, uint(5)).Return(domain.Event{ID: 5}, nil)
	f.events.On("FindByID", ctx, uint(6)).Return(domain.Event{}, ErrEventNotFound)
	f.stalls.On("FindStallByID", ctx, uint(42)).Return(domain.Stall{ID: 42, EventID: 9}, nil)
	f.stalls.On("FindStallByID", ctx, uint(44)).Return(domain.Stall{}, ErrStallNotFound)

	moved, _, err := issuer.Stall(5, 42)
	require.NoError(t, err)
	removed, _, err := issuer.Stall(5, 44)
	require.NoError(t, err)
	deletedEvent, _, err := issuer.Event(6)
	require.NoError(t, err)

	for _, ref := range []string{moved, removed, deletedEvent, "tampered.token.value"} {
		_, err := f.svc.Resolve(ctx, ref)
		assert.ErrorIs(t, err, ErrInvalidReference)
	}
}
