package repository

import (
	"fmt"

	"trustmrr/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AutoMigrate creates or updates every table the service owns and seeds the
// ten slot rows used for booking locks.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userModel{},
		&companyModel{},
		&integrationKeyModel{},
		&adSlotModel{},
		&adModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	slots := make([]adSlotModel, 0, len(domain.AllSlots))
	for _, s := range domain.AllSlots {
		slots = append(slots, adSlotModel{ID: string(s), Label: s.Label()})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&slots).Error; err != nil {
		return fmt.Errorf("seed ad slots: %w", err)
	}
	return nil
}
