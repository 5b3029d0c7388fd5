package repositories

import (
	"context"
	"fmt"

	"walletshop/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomizationRepository defines the interface for customization option data
// access.
type CustomizationRepository interface {
	GetAll(ctx context.Context) ([]models.CustomizationOption, error)
	Create(ctx context.Context, option *models.CustomizationOption) error
	Delete(ctx context.Context, id string) error
}

// GORMCustomizationRepository is a GORM implementation of
// CustomizationRepository.
type GORMCustomizationRepository struct {
	db *gorm.DB
}

// NewGORMCustomizationRepository creates a new instance of
// GORMCustomizationRepository.
func NewGORMCustomizationRepository(db *gorm.DB) *GORMCustomizationRepository {
	return &GORMCustomizationRepository{
		db: db,
	}
}

// GetAll retrieves all customization options.
func (r *GORMCustomizationRepository) GetAll(ctx context.Context) ([]models.CustomizationOption, error) {
	var options []models.CustomizationOption
	if err := r.db.WithContext(ctx).Order("category, name").Find(&options).Error; err != nil {
		return nil, fmt.Errorf("failed to get customization options: %w", err)
	}
	return options, nil
}

// Create stores a new customization option.
func (r *GORMCustomizationRepository) Create(ctx context.Context, option *models.CustomizationOption) error {
	if option.ID == "" {
		option.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(option).Error; err != nil {
		return fmt.Errorf("failed to create customization option: %w", err)
	}
	return nil
}

// Delete removes a customization option by its ID.
func (r *GORMCustomizationRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.CustomizationOption{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete customization option %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("customization option with ID %s not found for deletion", id)
	}
	return nil
}
