package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Keyword{},
		&Contest{},
		&ContestPhoto{},
		&Photo{},
		&Like{},
	)
}

// DropTables removes every table in reverse dependency order.
func DropTables(db *gorm.DB) error {
	return db.Migrator().DropTable(
		&Like{},
		&Photo{},
		&ContestPhoto{},
		&Contest{},
		&Keyword{},
		&User{},
	)
}
