package repositories

import (
	"context"

	"walletshop/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByUser(ctx context.Context, userID string) ([]models.Order, error)

	// GetByIdempotencyKey returns the order a (user, key) pair was already
	// spent on, or models.ErrOrderNotFound if the key is fresh.
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error)

	// Place atomically reserves stock for every item, snapshots each item's
	// current product name and price, computes the total and inserts the
	// order. Either all of that commits or none of it does. Returns
	// *models.ProductNotFoundError, *models.InsufficientStockError or
	// ErrDuplicateIdempotencyKey without side effects on failure.
	Place(ctx context.Context, order *models.Order) error

	// UpdateStatus moves an order from an expected current status to a new
	// one; ErrStatusConflict means the order's status was no longer `from`.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error
}
