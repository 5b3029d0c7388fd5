package services

import (
	"context"
	"encoding/json"
	"errors"

	"walletshop/internal/models"
	"walletshop/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher publishes order lifecycle events to the message broker.
// rabbitmq.Client satisfies it; a nil publisher disables events.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderService owns order placement, the status lifecycle and the stock
// reservation that ties the two to the product catalog.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	publisher   EventPublisher
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	publisher EventPublisher,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// GetOrdersByUser retrieves the orders belonging to one user.
func (s *OrderService) GetOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUser(ctx, userID)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// PlaceOrder converts a cart into an order. Validation happens before the
// store is touched; the reservation itself (stock check, decrement, price
// snapshot, insert) is one atomic unit inside the repository, so a failing
// cart leaves every product's stock exactly as it was.
//
// A repeated call with the same idempotency key for the same user returns the
// order created by the first call instead of decrementing stock again.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, lines []models.CartLine, idempotencyKey string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, models.ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &models.InvalidQuantityError{ProductID: line.ProductID, Quantity: line.Quantity}
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if idempotencyKey == "" {
		// Clients that never retry may omit the key; every order still needs
		// a distinct one for the unique index.
		idempotencyKey = uuid.New().String()
	} else if existing, err := s.orderRepo.GetByIdempotencyKey(ctx, userID, idempotencyKey); err == nil {
		return existing, nil
	} else if !errors.Is(err, models.ErrOrderNotFound) {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			Customization: line.Customization,
		})
	}

	order := &models.Order{
		UserID:         userID,
		UserEmail:      user.Email,
		Items:          items,
		IdempotencyKey: idempotencyKey,
	}

	if err := s.orderRepo.Place(ctx, order); err != nil {
		if errors.Is(err, repositories.ErrDuplicateIdempotencyKey) {
			// Lost a race against a concurrent retry of the same request.
			return s.orderRepo.GetByIdempotencyKey(ctx, userID, idempotencyKey)
		}
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("total", order.TotalAmount.String()),
		zap.Int("lines", len(order.Items)),
	)

	s.publishEvent("order.created", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"status":   order.Status,
		"total":    order.TotalAmount,
	})

	return order, nil
}

// TransitionStatus moves an order through its lifecycle. Only the transitions
// pending→paid, pending→cancelled, paid→delivered and paid→cancelled are
// legal; paid requires the payment collaborator, delivered requires an admin,
// and a customer may only cancel their own still-pending order. Cancellation
// restocks every line best-effort.
func (s *OrderService) TransitionStatus(ctx context.Context, orderID string, newStatus models.OrderStatus, actor models.Actor) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !newStatus.Valid() || !order.Status.CanTransitionTo(newStatus) {
		return nil, &models.InvalidTransitionError{OrderID: orderID, From: order.Status, To: newStatus}
	}

	if err := s.authorizeTransition(order, newStatus, actor); err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, newStatus); err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			// Someone else moved the order first; report against its status now.
			current, readErr := s.orderRepo.GetByID(ctx, orderID)
			if readErr != nil {
				return nil, readErr
			}
			return nil, &models.InvalidTransitionError{OrderID: orderID, From: current.Status, To: newStatus}
		}
		return nil, err
	}

	previous := order.Status
	order.Status = newStatus

	if newStatus == models.StatusCancelled {
		s.restock(ctx, order)
	}

	s.logger.Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(previous)),
		zap.String("to", string(newStatus)),
		zap.String("actor_role", actor.Role),
	)

	s.publishEvent("order.status_changed", map[string]interface{}{
		"order_id": orderID,
		"from":     previous,
		"to":       newStatus,
	})

	return order, nil
}

// authorizeTransition enforces which actor may drive which transition.
func (s *OrderService) authorizeTransition(order *models.Order, newStatus models.OrderStatus, actor models.Actor) error {
	switch newStatus {
	case models.StatusPaid:
		if actor.Role != models.RolePayment {
			return models.ErrForbidden
		}
	case models.StatusDelivered:
		if !actor.IsAdmin() {
			return models.ErrForbidden
		}
	case models.StatusCancelled:
		// Admins may always cancel; a customer only their own pending order;
		// the payment collaborator cancels a pending order on decline.
		ownPending := actor.UserID == order.UserID && order.Status == models.StatusPending
		declined := actor.Role == models.RolePayment && order.Status == models.StatusPending
		if !actor.IsAdmin() && !ownPending && !declined {
			return models.ErrForbidden
		}
	default:
		return models.ErrForbidden
	}
	return nil
}

// restock returns every cancelled line's quantity to its product. Failures
// (including deleted products) do not fail the cancellation.
func (s *OrderService) restock(ctx context.Context, order *models.Order) {
	returned := make(map[string]int)
	for _, item := range order.Items {
		returned[item.ProductID] += item.Quantity
	}
	for productID, qty := range returned {
		if err := s.productRepo.Restock(ctx, productID, qty); err != nil {
			s.logger.Warn("restock failed",
				zap.String("order_id", order.ID),
				zap.String("product_id", productID),
				zap.Int("quantity", qty),
				zap.Error(err),
			)
		}
	}
}

// publishEvent sends an event to the broker, logging instead of failing when
// the broker is down or absent.
func (s *OrderService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to marshal event", zap.String("routing_key", routingKey), zap.Error(err))
		return
	}
	if err := s.publisher.Publish("order", routingKey, body); err != nil {
		s.logger.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
