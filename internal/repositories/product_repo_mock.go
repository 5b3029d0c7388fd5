package repositories

import (
	"context"
	"sync"

	"walletshop/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products.
func (r *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, &models.ProductNotFoundError{ProductID: id}
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[product.ID]
	if !ok {
		return &models.ProductNotFoundError{ProductID: product.ID}
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return &models.ProductNotFoundError{ProductID: id}
	}
	delete(r.products, id)
	return nil
}

// Restock adds qty back to a product's stock. Missing products are ignored so
// cancelling an order whose product was deleted still succeeds.
func (r *MockProductRepository) Restock(ctx context.Context, productID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return nil
	}
	product.Stock += qty
	r.products[productID] = product
	return nil
}

// reserveAll performs the all-or-nothing check-and-decrement for a placement
// under a single lock, filling each item's name and price snapshot. Either
// every line is reserved or none are.
func (r *MockProductRepository) reserveAll(items []models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Aggregate first: two lines for the same product must fit together.
	needed := make(map[string]int)
	for i := range items {
		product, ok := r.products[items[i].ProductID]
		if !ok {
			return &models.ProductNotFoundError{ProductID: items[i].ProductID}
		}
		needed[items[i].ProductID] += items[i].Quantity
		items[i].ProductName = product.Name
		items[i].UnitPrice = product.Price
	}

	var shortfalls []models.StockShortfall
	for productID, qty := range needed {
		if product := r.products[productID]; product.Stock < qty {
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

	for productID, qty := range needed {
		product := r.products[productID]
		product.Stock -= qty
		r.products[productID] = product
	}
	return nil
}
