package services

import (
	"context"

	"walletshop/internal/models"
	"walletshop/internal/repositories"
)

// CartService handles the pre-order cart staging area.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddItem stages a product with its customization in the user's cart. Stock
// is not reserved here; only placement reserves stock.
func (s *CartService) AddItem(ctx context.Context, userID string, item *models.CartItem) error {
	if item.Quantity <= 0 {
		return &models.InvalidQuantityError{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	if _, err := s.productRepo.GetByID(ctx, item.ProductID); err != nil {
		return err
	}
	item.UserID = userID
	return s.cartRepo.Add(ctx, item)
}

// GetCart retrieves the user's staged items.
func (s *CartService) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	return s.cartRepo.GetByUser(ctx, userID)
}

// Lines converts the user's staged cart into placement lines.
func (s *CartService) Lines(ctx context.Context, userID string) ([]models.CartLine, error) {
	items, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines := make([]models.CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.Line())
	}
	return lines, nil
}

// ClearCart empties the user's staging area, typically after a successful
// placement.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	return s.cartRepo.Clear(ctx, userID)
}
