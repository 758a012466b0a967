package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/recipe-remix/backend/internal/model"
)

// RunMigrations creates or updates the cookbook schema
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.CookbookEntry{}); err != nil {
		return fmt.Errorf("failed to migrate cookbook entries: %w", err)
	}
	return nil
}
