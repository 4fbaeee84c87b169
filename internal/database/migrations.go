package database

import (
	"gorm.io/gorm"

	"github.com/SugiKent/attendance-system/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.AttendanceRecord{},
		&models.LeaveRequest{},
	)
}
