package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	BookingStatusActive    = "active"
	BookingStatusCancelled = "cancelled"
)

// Booking rows are kept after cancellation. The partial unique index allows at
// most one active booking per stall.
type Booking struct {
	ID uint `gorm:"primaryKey"`

	StallID   uint   `gorm:"not null;uniqueIndex:idx_bookings_active_stall,where:status = 'active'"`
	BuilderID uint   `gorm:"not null;index"`
	EventID   uint   `gorm:"not null;index"`
	Status    string `gorm:"not null;index"`

	CreatedAt   time.Time `gorm:"not null"`
	CancelledAt *time.Time
}

type BookingDAO struct {
	db *gorm.DB
}

func NewBookingDAO(db *gorm.DB) *BookingDAO {
	return &BookingDAO{
		db: db,
	}
}

// Book flips the stall from available to booked and records the booking. Of
// any number of concurrent callers for the same stall exactly one succeeds, the
// rest get ErrAlreadyBooked.
func (d *BookingDAO) Book(ctx context.Context, stallID, builderID uint) (Booking, error) {
	var booking Booking

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Stall{}).
			Where("id = ? AND status = ?", stallID, StallStatusAvailable).
			Updates(map[string]interface{}{
				"status":     StallStatusBooked,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}

		stall, err := findStall(tx, stallID)
		if err != nil {
			return err
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyBooked
		}

		booking = Booking{
			StallID:   stall.ID,
			BuilderID: builderID,
			EventID:   stall.EventID,
			Status:    BookingStatusActive,
		}
		if err := tx.Create(&booking).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyBooked
			}

			return err
		}

		return nil
	})
	if err != nil {
		return Booking{}, err
	}

	return booking, nil
}

// Cancel marks an active booking cancelled and makes its stall available again.
func (d *BookingDAO) Cancel(ctx context.Context, id uint) (Booking, error) {
	var booking Booking

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND status = ?", id, BookingStatusActive).First(&booking)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}

			return result.Error
		}

		cancelled, err := cancelActiveBookings(tx, []uint{booking.StallID})
		if err != nil {
			return err
		}
		// lost a race with another cancellation
		if len(cancelled) == 0 {
			return ErrBookingNotFound
		}

		booking = cancelled[0]
		return nil
	})
	if err != nil {
		return Booking{}, err
	}

	return booking, nil
}

func (d *BookingDAO) FindByID(ctx context.Context, id uint) (Booking, error) {
	var booking Booking

	result := d.db.WithContext(ctx).First(&booking, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Booking{}, ErrBookingNotFound
		}

		return Booking{}, result.Error
	}

	return booking, nil
}

func (d *BookingDAO) FindActiveByStallID(ctx context.Context, stallID uint) (Booking, error) {
	var booking Booking

	result := d.db.WithContext(ctx).
		Where("stall_id = ? AND status = ?", stallID, BookingStatusActive).
		First(&booking)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Booking{}, ErrBookingNotFound
		}

		return Booking{}, result.Error
	}

	return booking, nil
}

func (d *BookingDAO) FindByBuilderID(ctx context.Context, builderID uint) ([]Booking, error) {
	var bookings []Booking

	err := d.db.WithContext(ctx).
		Where("builder_id = ?", builderID).
		Order("created_at DESC, id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (d *BookingDAO) FindByEventID(ctx context.Context, eventID uint) ([]Booking, error) {
	var bookings []Booking

	db := d.db.WithContext(ctx)
	if _, err := findEvent(db, eventID); err != nil {
		return nil, err
	}

	err := db.Where("event_id = ?", eventID).
		Order("created_at DESC, id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// cancelActiveBookings cancels the active bookings of the given stalls and
// puts the stalls back to available.
func cancelActiveBookings(tx *gorm.DB, stallIDs []uint) ([]Booking, error) {
	var bookings []Booking
	err := tx.Where("stall_id IN ? AND status = ?", stallIDs, BookingStatusActive).
		Order("id ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, nil
	}

	now := time.Now()
	ids := make([]uint, len(bookings))
	for i := range bookings {
		ids[i] = bookings[i].ID
		bookings[i].Status = BookingStatusCancelled
		bookings[i].CancelledAt = &now
	}

	result := tx.Model(&Booking{}).
		Where("id IN ? AND status = ?", ids, BookingStatusActive).
		Updates(map[string]interface{}{
			"status":       BookingStatusCancelled,
			"cancelled_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	// a booking cancelled since we read it leaves the set we were asked to cancel
	if int(result.RowsAffected) != len(ids) {
		return nil, ErrBookingsChanged
	}

	err = tx.Model(&Stall{}).
		Where("id IN ? AND status = ?", stallIDs, StallStatusBooked).
		Updates(map[string]interface{}{
			"status":     StallStatusAvailable,
			"updated_at": now,
		}).Error
	if err != nil {
		return nil, err
	}

	return bookings, nil
}
