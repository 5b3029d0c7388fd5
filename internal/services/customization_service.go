package services

import (
	"context"

	"walletshop/internal/models"
	"walletshop/internal/repositories"
)

// CustomizationService manages the catalog of customization options shown by
// the storefront customizer.
type CustomizationService struct {
	repo repositories.CustomizationRepository
}

// NewCustomizationService creates a new CustomizationService.
func NewCustomizationService(repo repositories.CustomizationRepository) *CustomizationService {
	return &CustomizationService{
		repo: repo,
	}
}

// GetAllOptions retrieves all customization options.
func (s *CustomizationService) GetAllOptions(ctx context.Context) ([]models.CustomizationOption, error) {
	return s.repo.GetAll(ctx)
}

// CreateOption adds a new customization option.
func (s *CustomizationService) CreateOption(ctx context.Context, option *models.CustomizationOption) error {
	return s.repo.Create(ctx, option)
}

// DeleteOption removes a customization option. Existing orders keep their
// customization snapshots.
func (s *CustomizationService) DeleteOption(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
