package repository

import (
	"context"
	"fmt"

	"github.com/propexpo/stall-booking-api/internal/domain"
	"github.com/propexpo/stall-booking-api/internal/repository/dao"
)

type BookingDAO interface {
	Book(ctx context.Context, stallID, builderID uint) (dao.Booking, error)
	Cancel(ctx context.Context, id uint) (dao.Booking, error)
	FindByID(ctx context.Context, id uint) (dao.Booking, error)
	FindActiveByStallID(ctx context.Context, stallID uint) (dao.Booking, error)
	FindByBuilderID(ctx context.Context, builderID uint) ([]dao.Booking, error)
	FindByEventID(ctx context.Context, eventID uint) ([]dao.Booking, error)
}

type BookingRepository struct {
	dao BookingDAO
}

func NewBookingRepository(dao BookingDAO) *BookingRepository {
	return &BookingRepository{
		dao: dao,
	}
}

func (r *BookingRepository) Book(ctx context.Context, stallID, builderID uint) (domain.Booking, error) {
	booking, err := r.dao.Book(ctx, stallID, builderID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.Book -> %w", err)
	}

	return bookingDaoToDomain(booking), nil
}

func (r *BookingRepository) Cancel(ctx context.Context, id uint) (domain.Booking, error) {
	booking, err := r.dao.Cancel(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.Cancel -> %w", err)
	}

	return bookingDaoToDomain(booking), nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uint) (domain.Booking, error) {
	booking, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return bookingDaoToDomain(booking), nil
}

func (r *BookingRepository) FindActiveByStallID(ctx context.Context, stallID uint) (domain.Booking, error) {
	booking, err := r.dao.FindActiveByStallID(ctx, stallID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.FindActiveByStallID -> %w", err)
	}

	return bookingDaoToDomain(booking), nil
}

func (r *BookingRepository) FindByBuilderID(ctx context.Context, builderID uint) ([]domain.Booking, error) {
	found, err := r.dao.FindByBuilderID(ctx, builderID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByBuilderID -> %w", err)
	}

	return bookingsDaoToDomain(found), nil
}

func (r *BookingRepository) FindByEventID(ctx context.Context, eventID uint) ([]domain.Booking, error) {
	found, err := r.dao.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEventID -> %w", err)
	}

	return bookingsDaoToDomain(found), nil
}

func bookingsDaoToDomain(found []dao.Booking) []domain.Booking {
	bookings := make([]domain.Booking, len(found))
	for i, b := range found {
		bookings[i] = bookingDaoToDomain(b)
	}

	return bookings
}

func bookingDaoToDomain(b dao.Booking) domain.Booking {
	return domain.Booking{
		ID:          b.ID,
		StallID:     b.StallID,
		BuilderID:   b.BuilderID,
		EventID:     b.EventID,
		Status:      domain.BookingStatus(b.Status),
		CreatedAt:   b.CreatedAt,
		CancelledAt: b.CancelledAt,
	}
}
