package database

import (
	"gorm.io/gorm"
)

// OrderByID is the default listing order.
func OrderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
