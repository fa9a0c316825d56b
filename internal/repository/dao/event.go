package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Event struct {
	ID uint `gorm:"primaryKey"`

	Name        string `gorm:"not null"`
	Description string
	Location    string `gorm:"not null"`
	StallCount  int    `gorm:"not null;default:0"`

	StartDate time.Time `gorm:"not null;index"`
	EndDate   time.Time `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type EventChanges struct {
	Name        *string
	Description *string
	Location    *string
	StallCount  *int
	StartDate   *time.Time
	EndDate     *time.Time
}

// EventCounters are the inventory totals of one event.
type EventCounters struct {
	Allocated int
	Booked    int
	Available int
}

type statusCount struct {
	StallTypeID uint
	Status      string
	Total       int
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	return findEvent(d.db.WithContext(ctx), id)
}

// FindAll lists events ordered by start date. A non-nil endingAfter keeps only
// events that have not finished before it.
func (d *EventDAO) FindAll(ctx context.Context, endingAfter *time.Time) ([]Event, error) {
	var events []Event

	query := d.db.WithContext(ctx).Order("start_date ASC, id ASC")
	if endingAfter != nil {
		query = query.Where("end_date >= ?", *endingAfter)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

// Update applies changes under the event row lock. Lowering stall_count below
// what the stall types already hold fails with *CapacityExceededError.
func (d *EventDAO) Update(ctx context.Context, id uint, changes EventChanges) (Event, error) {
	var updated Event

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := lockEvent(tx, id)
		if err != nil {
			return err
		}

		if changes.StallCount != nil && *changes.StallCount != event.StallCount {
			allocated, err := allocatedQuantity(tx, id)
			if err != nil {
				return err
			}
			if *changes.StallCount < allocated {
				return &CapacityExceededError{
					By:        allocated - *changes.StallCount,
					Remaining: event.StallCount - allocated,
				}
			}
			event.StallCount = *changes.StallCount
		}

		if changes.Name != nil {
			event.Name = *changes.Name
		}
		if changes.Description != nil {
			event.Description = *changes.Description
		}
		if changes.Location != nil {
			event.Location = *changes.Location
		}
		if changes.StartDate != nil {
			event.StartDate = *changes.StartDate
		}
		if changes.EndDate != nil {
			event.EndDate = *changes.EndDate
		}

		if err := tx.Save(&event).Error; err != nil {
			return err
		}

		updated = event
		return nil
	})
	if err != nil {
		return Event{}, err
	}

	return updated, nil
}

// Delete removes the event with its stall types, stalls and booking history.
// It is refused while any stall of the event is booked.
func (d *EventDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockEvent(tx, id); err != nil {
			return err
		}

		stalls, err := lockStalls(tx, "event_id", id)
		if err != nil {
			return err
		}

		booked := 0
		for _, stall := range stalls {
			if stall.Status == StallStatusBooked {
				booked++
			}
		}
		if booked > 0 {
			return &HasActiveBookingsError{Booked: booked}
		}

		if err := deleteAvailableStalls(tx, "event_id", id, len(stalls)); err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&StallType{}).Error; err != nil {
			return err
		}

		return tx.Delete(&Event{}, id).Error
	})
}

func (d *EventDAO) Counters(ctx context.Context, id uint) (EventCounters, error) {
	db := d.db.WithContext(ctx)

	if _, err := findEvent(db, id); err != nil {
		return EventCounters{}, err
	}

	allocated, err := allocatedQuantity(db, id)
	if err != nil {
		return EventCounters{}, err
	}

	var rows []statusCount
	err = db.Model(&Stall{}).
		Select("status, count(*) AS total").
		Where("event_id = ?", id).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return EventCounters{}, err
	}

	counters := EventCounters{Allocated: allocated}
	for _, row := range rows {
		switch row.Status {
		case StallStatusBooked:
			counters.Booked = row.Total
		case StallStatusAvailable:
			counters.Available = row.Total
		}
	}

	return counters, nil
}

func findEvent(db *gorm.DB, id uint) (Event, error) {
	var event Event

	result := db.First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

// lockEvent takes the per-event write lock every capacity change goes through.
func lockEvent(tx *gorm.DB, id uint) (Event, error) {
	return findEvent(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func allocatedQuantity(db *gorm.DB, eventID uint) (int, error) {
	var allocated int

	err := db.Model(&StallType{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("event_id = ?", eventID).
		Scan(&allocated).Error
	if err != nil {
		return 0, err
	}

	return allocated, nil
}
