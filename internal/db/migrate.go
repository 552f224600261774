/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/friendsincode/movierazzi/internal/models"
)

// Migrate applies database schema migrations using GORM auto-migrate.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.User{},
		&models.Schedule{},
		&models.ScheduleItem{},
		&models.AvailabilityRecord{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops all application tables. Development use only.
func Reset(database *gorm.DB) error {
	return database.Migrator().DropTable(
		&models.AuditLog{},
		&models.AvailabilityRecord{},
		&models.ScheduleItem{},
		&models.Schedule{},
		&models.User{},
	)
}
