package repositories

import (
	"context"

	"walletshop/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error

	// Restock adds qty back onto a product's stock counter. Used when an
	// order is cancelled; if the product has since been deleted the restock
	// is a no-op and no error is returned.
	Restock(ctx context.Context, productID string, qty int) error
}
