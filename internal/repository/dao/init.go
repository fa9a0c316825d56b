package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Event{},
		&StallType{},
		&Stall{},
		&Booking{},
	)
}

// dropAllTables is used by the test suites to start each test from scratch.
func dropAllTables(db *gorm.DB) error {
	return db.Migrator().DropTable(&Booking{}, &Stall{}, &StallType{}, &Event{})
}
