package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"walletshop/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders with their items.
func (r *GORMOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID with its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByUser retrieves every order belonging to a user.
func (r *GORMOrderRepository) GetByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// GetByIdempotencyKey retrieves the order previously created for a
// (user, key) pair.
func (r *GORMOrderRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to look up idempotency key for user %s: %w", userID, err)
	}
	return &order, nil
}

// Place runs the whole reservation as one transaction: resolve every product,
// verify the cart fits the available stock, snapshot name and price onto each
// item, decrement stock and insert the order. Any failure rolls everything
// back, so no stock is touched for any line unless the order commits.
func (r *GORMOrderRepository) Place(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Aggregate quantities per product so two lines for the same wallet
		// are checked against the stock together.
		needed := make(map[string]int)
		for i := range order.Items {
			item := &order.Items[i]

			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &models.ProductNotFoundError{ProductID: item.ProductID}
				}
				return fmt.Errorf("failed to resolve product %s: %w", item.ProductID, err)
			}

			needed[item.ProductID] += item.Quantity
			item.ProductName = product.Name
			item.UnitPrice = product.Price
		}

		var shortfalls []models.StockShortfall
		for productID, qty := range needed {
			var product models.Product
			if err := tx.First(&product, "id = ?", productID).Error; err != nil {
				return fmt.Errorf("failed to re-read product %s: %w", productID, err)
			}
			if product.Stock < qty {
				shortfalls = append(shortfalls, models.StockShortfall{
					ProductID: productID,
					Requested: qty,
					Available: product.Stock,
				})
			}
		}
		if len(shortfalls) > 0 {
			return &models.InsufficientStockError{Shortfalls: shortfalls}
		}

		// Conditional decrement guards the window between the check above and
		// this write: a concurrent placement that got there first makes the
		// WHERE clause miss, and the whole transaction rolls back.
		for productID, qty := range needed {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", productID, qty).
				UpdateColumn("stock", gorm.Expr("stock - ?", qty))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock for product %s: %w", productID, res.Error)
			}
			if res.RowsAffected == 0 {
				var product models.Product
				if err := tx.First(&product, "id = ?", productID).Error; err != nil {
					return &models.ProductNotFoundError{ProductID: productID}
				}
				return &models.InsufficientStockError{Shortfalls: []models.StockShortfall{
					{ProductID: productID, Requested: qty, Available: product.Stock},
				}}
			}
		}

		total := decimal.Zero
		for _, item := range order.Items {
			total = total.Add(item.Subtotal())
		}
		order.TotalAmount = total
		order.Status = models.StatusPending
		order.CreatedAt = time.Now()
		order.UpdatedAt = order.CreatedAt

		if err := tx.Create(order).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateIdempotencyKey
			}
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
}

// UpdateStatus compare-and-swaps the order's status so concurrent transitions
// cannot both win.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update status for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var order models.Order
		if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
			return models.ErrOrderNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

// isUniqueViolation recognizes duplicate-key errors across the sqlite and
// postgres drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
