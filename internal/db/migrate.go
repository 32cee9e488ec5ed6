package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/kwheeler/lifegit/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Branch{},
		&models.TaskPlan{},
		&models.TaskItem{},
		&models.Commit{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// EnsureMaster seeds the single master branch if the database does not have
// one yet. Idempotent: an existing master is left untouched.
func EnsureMaster(db *gorm.DB, profile string) (*models.Branch, error) {
	var master models.Branch
	err := db.Where("status = ?", models.StatusMaster).First(&master).Error
	if err == nil {
		return &master, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("db: find master branch: %w", err)
	}

	id, err := models.NewID(models.PrefixBranch)
	if err != nil {
		return nil, err
	}
	master = models.Branch{
		ID:          id,
		Name:        "master",
		Description: fmt.Sprintf("Life timeline for %s", profile),
		Status:      models.StatusMaster,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(&master).Error; err != nil {
		return nil, fmt.Errorf("db: seed master branch: %w", err)
	}
	return &master, nil
}
