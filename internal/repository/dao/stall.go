package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/propexpo/stall-booking-api/internal/pkg/ledger"
)

const (
	StallStatusAvailable = "available"
	StallStatusBooked    = "booked"
)

type StallType struct {
	ID uint `gorm:"primaryKey"`

	EventID   uint    `gorm:"not null;index"`
	Name      string  `gorm:"not null"`
	UnitPrice float64 `gorm:"type:numeric(12,2);not null"`
	Quantity  int     `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Stall struct {
	ID uint `gorm:"primaryKey"`

	StallTypeID uint   `gorm:"not null;index"`
	EventID     uint   `gorm:"not null;uniqueIndex:idx_stalls_event_number"`
	StallNumber int    `gorm:"not null;uniqueIndex:idx_stalls_event_number"`
	Status      string `gorm:"not null;default:available;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type StallTypeChanges struct {
	Name      *string
	UnitPrice *float64
	Quantity  *int
}

// StallTypeCounts is a stall type with the state of its materialised stalls.
type StallTypeCounts struct {
	StallType
	Booked    int
	Available int
}

type InventoryDAO struct {
	db *gorm.DB
}

func NewInventoryDAO(db *gorm.DB) *InventoryDAO {
	return &InventoryDAO{
		db: db,
	}
}

// Allocations returns the event and the quantities of its stall types, which
// is everything the capacity arithmetic needs.
func (d *InventoryDAO) Allocations(ctx context.Context, eventID uint) (Event, []ledger.Allocation, error) {
	db := d.db.WithContext(ctx)

	event, err := findEvent(db, eventID)
	if err != nil {
		return Event{}, nil, err
	}

	allocations, err := loadAllocations(db, eventID)
	if err != nil {
		return Event{}, nil, err
	}

	return event, allocations, nil
}

// InsertStallType creates the type together with its stalls. It returns the
// capacity left once the type is in place.
func (d *InventoryDAO) InsertStallType(ctx context.Context, stallType StallType) (StallType, int, error) {
	var remaining int

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := lockEvent(tx, stallType.EventID)
		if err != nil {
			return err
		}

		allocations, err := loadAllocations(tx, event.ID)
		if err != nil {
			return err
		}

		if ok, by := ledger.CanAllocate(event.StallCount, allocations, stallType.Quantity, 0); !ok {
			return &CapacityExceededError{
				By:        by,
				Remaining: ledger.Remaining(event.StallCount, allocations, 0),
			}
		}

		if err := tx.Create(&stallType).Error; err != nil {
			return err
		}

		if err := materialiseStalls(tx, stallType, stallType.Quantity); err != nil {
			return err
		}

		remaining = ledger.Remaining(event.StallCount, allocations, 0) - stallType.Quantity
		return nil
	})
	if err != nil {
		return StallType{}, 0, err
	}

	return stallType, remaining, nil
}

// UpdateStallType applies changes and keeps the stall set in line with the new
// quantity. Shrinking only ever removes available stalls.
func (d *InventoryDAO) UpdateStallType(ctx context.Context, id uint, changes StallTypeChanges) (StallType, int, error) {
	var (
		updated   StallType
		remaining int
	)

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findStallType(tx, id)
		if err != nil {
			return err
		}

		event, err := lockEvent(tx, current.EventID)
		if err != nil {
			return err
		}

		// the type may have gone while we waited for the lock
		stallType, err := findStallType(tx, id)
		if err != nil {
			return err
		}

		allocations, err := loadAllocations(tx, event.ID)
		if err != nil {
			return err
		}

		if changes.Quantity != nil && *changes.Quantity != stallType.Quantity {
			quantity := *changes.Quantity

			if ok, by := ledger.CanAllocate(event.StallCount, allocations, quantity, stallType.ID); !ok {
				return &CapacityExceededError{
					By:        by,
					Remaining: ledger.Remaining(event.StallCount, allocations, stallType.ID),
				}
			}

			if quantity > stallType.Quantity {
				err = materialiseStalls(tx, stallType, quantity-stallType.Quantity)
			} else {
				err = releaseStalls(tx, stallType.ID, stallType.Quantity-quantity)
			}
			if err != nil {
				return err
			}

			stallType.Quantity = quantity
		}

		if changes.Name != nil {
			stallType.Name = *changes.Name
		}
		if changes.UnitPrice != nil {
			stallType.UnitPrice = *changes.UnitPrice
		}

		if err := tx.Save(&stallType).Error; err != nil {
			return err
		}

		updated = stallType
		remaining = ledger.Remaining(event.StallCount, allocations, stallType.ID) - stallType.Quantity
		return nil
	})
	if err != nil {
		return StallType{}, 0, err
	}

	return updated, remaining, nil
}

// DeleteStallType removes the type and its stalls. Booked stalls block the
// deletion unless force is set, in which case their bookings are cancelled and
// returned.
func (d *InventoryDAO) DeleteStallType(ctx context.Context, id uint, force bool) (StallType, []Booking, error) {
	var (
		deleted   StallType
		cancelled []Booking
	)

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findStallType(tx, id)
		if err != nil {
			return err
		}

		if _, err := lockEvent(tx, current.EventID); err != nil {
			return err
		}

		stallType, err := findStallType(tx, id)
		if err != nil {
			return err
		}

		stalls, err := lockStalls(tx, "stall_type_id", id)
		if err != nil {
			return err
		}

		var bookedIDs []uint
		for _, stall := range stalls {
			if stall.Status == StallStatusBooked {
				bookedIDs = append(bookedIDs, stall.ID)
			}
		}

		if len(bookedIDs) > 0 {
			if !force {
				return &HasActiveBookingsError{Booked: len(bookedIDs)}
			}

			cancelled, err = cancelActiveBookings(tx, bookedIDs)
			if err != nil {
				return err
			}
		}

		if err := deleteAvailableStalls(tx, "stall_type_id", id, len(stalls)); err != nil {
			return err
		}
		if err := tx.Delete(&stallType).Error; err != nil {
			return err
		}

		deleted = stallType
		return nil
	})
	if err != nil {
		return StallType{}, nil, err
	}

	return deleted, cancelled, nil
}

func (d *InventoryDAO) FindStallTypeByID(ctx context.Context, id uint) (StallType, error) {
	return findStallType(d.db.WithContext(ctx), id)
}

// ListStallTypes returns the event's types with booked and available counts.
func (d *InventoryDAO) ListStallTypes(ctx context.Context, eventID uint) ([]StallTypeCounts, error) {
	db := d.db.WithContext(ctx)

	if _, err := findEvent(db, eventID); err != nil {
		return nil, err
	}

	var types []StallType
	if err := db.Where("event_id = ?", eventID).Order("id ASC").Find(&types).Error; err != nil {
		return nil, err
	}

	var rows []statusCount
	err := db.Model(&Stall{}).
		Select("stall_type_id, status, count(*) AS total").
		Where("event_id = ?", eventID).
		Group("stall_type_id, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]*StallTypeCounts, len(types))
	result := make([]StallTypeCounts, len(types))
	for i, t := range types {
		result[i] = StallTypeCounts{StallType: t}
		counts[t.ID] = &result[i]
	}

	for _, row := range rows {
		c, ok := counts[row.StallTypeID]
		if !ok {
			continue
		}
		switch row.Status {
		case StallStatusBooked:
			c.Booked = row.Total
		case StallStatusAvailable:
			c.Available = row.Total
		}
	}

	return result, nil
}

func (d *InventoryDAO) FindStallByID(ctx context.Context, id uint) (Stall, error) {
	return findStall(d.db.WithContext(ctx), id)
}

// FindStalls returns every stall of the event, optionally narrowed to one type
// and one status, ordered by stall number.
func (d *InventoryDAO) FindStalls(ctx context.Context, eventID uint, stallTypeID *uint, status string) ([]Stall, error) {
	db := d.db.WithContext(ctx)

	if _, err := findEvent(db, eventID); err != nil {
		return nil, err
	}

	query := db.Where("event_id = ?", eventID)
	if stallTypeID != nil {
		query = query.Where("stall_type_id = ?", *stallTypeID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var stalls []Stall
	if err := query.Order("stall_number ASC").Find(&stalls).Error; err != nil {
		return nil, err
	}

	return stalls, nil
}

func findStallType(db *gorm.DB, id uint) (StallType, error) {
	var stallType StallType

	result := db.First(&stallType, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return StallType{}, ErrStallTypeNotFound
		}

		return StallType{}, result.Error
	}

	return stallType, nil
}

func findStall(db *gorm.DB, id uint) (Stall, error) {
	var stall Stall

	result := db.First(&stall, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Stall{}, ErrStallNotFound
		}

		return Stall{}, result.Error
	}

	return stall, nil
}

func loadAllocations(db *gorm.DB, eventID uint) ([]ledger.Allocation, error) {
	var types []StallType
	if err := db.Select("id, quantity").Where("event_id = ?", eventID).Find(&types).Error; err != nil {
		return nil, err
	}

	allocations := make([]ledger.Allocation, len(types))
	for i, t := range types {
		allocations[i] = ledger.Allocation{StallTypeID: t.ID, Quantity: t.Quantity}
	}

	return allocations, nil
}

// materialiseStalls appends n available stalls numbered after the event's
// highest stall number. The caller must hold the event lock.
func materialiseStalls(tx *gorm.DB, stallType StallType, n int) error {
	var highest int
	err := tx.Model(&Stall{}).
		Select("COALESCE(MAX(stall_number), 0)").
		Where("event_id = ?", stallType.EventID).
		Scan(&highest).Error
	if err != nil {
		return err
	}

	numbers := ledger.NextNumbers(highest, n)
	if len(numbers) == 0 {
		return nil
	}

	stalls := make([]Stall, len(numbers))
	for i, number := range numbers {
		stalls[i] = Stall{
			StallTypeID: stallType.ID,
			EventID:     stallType.EventID,
			StallNumber: number,
			Status:      StallStatusAvailable,
		}
	}

	return tx.CreateInBatches(&stalls, 100).Error
}

// releaseStalls deletes n available stalls of the type, highest numbers first.
func releaseStalls(tx *gorm.DB, stallTypeID uint, n int) error {
	var stalls []Stall
	if err := tx.Where("stall_type_id = ?", stallTypeID).Find(&stalls).Error; err != nil {
		return err
	}

	units := make([]ledger.Unit, len(stalls))
	for i, s := range stalls {
		units[i] = ledger.Unit{ID: s.ID, StallNumber: s.StallNumber, Available: s.Status == StallStatusAvailable}
	}

	ids, available, ok := ledger.Release(units, n)
	if !ok {
		return &InsufficientAvailableStallsError{Required: n, Available: available}
	}
	if len(ids) == 0 {
		return nil
	}

	result := tx.Where("id IN ? AND status = ?", ids, StallStatusAvailable).Delete(&Stall{})
	if result.Error != nil {
		return result.Error
	}
	// a stall booked since we read it must abort the whole reduction
	if int(result.RowsAffected) != len(ids) {
		return &InsufficientAvailableStallsError{Required: n, Available: available - (len(ids) - int(result.RowsAffected))}
	}

	return nil
}

// lockStalls reads the stalls matching column = id and holds their row locks
// until the transaction ends.
func lockStalls(tx *gorm.DB, column string, id uint) ([]Stall, error) {
	var stalls []Stall

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(column+" = ?", id).
		Order("id ASC").
		Find(&stalls).Error
	if err != nil {
		return nil, err
	}

	return stalls, nil
}

// deleteAvailableStalls deletes the stalls matching column = id, all of which
// must be available. A stall booked since it was read aborts the deletion.
func deleteAvailableStalls(tx *gorm.DB, column string, id uint, expected int) error {
	result := tx.Where(column+" = ? AND status = ?", id, StallStatusAvailable).Delete(&Stall{})
	if result.Error != nil {
		return result.Error
	}
	if int(result.RowsAffected) != expected {
		return &HasActiveBookingsError{Booked: expected - int(result.RowsAffected)}
	}

	return nil
}
