package handlers

import (
	"walletshop/internal/middleware"
	"walletshop/internal/models"
	"walletshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService *services.OrderService
	cartService  *services.CartService
	validate     *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, cartService *services.CartService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		cartService:  cartService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandlePlaceOrder)
	orderRoutes.Put("/:id", h.HandleTransitionStatus)
}

// HandleGetOrders lists orders: every order for an admin, the caller's own
// orders otherwise.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	var (
		orders []models.Order
		err    error
	)
	if actor.IsAdmin() {
		orders, err = h.orderService.GetAllOrders(c.Context())
	} else {
		orders, err = h.orderService.GetOrdersByUser(c.Context(), actor.UserID)
	}
	if err != nil {
		return respondError(c, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order. Customers can only read their
// own orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	order, err := h.orderService.GetOrderByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if !actor.IsAdmin() && order.UserID != actor.UserID {
		// Hide existence of other users' orders.
		return respondError(c, models.ErrOrderNotFound)
	}
	return c.JSON(order)
}

// PlaceOrderRequest is the checkout payload. Lines may be omitted to place
// whatever is staged in the caller's cart.
type PlaceOrderRequest struct {
	Lines          []models.CartLine `json:"lines" validate:"dive"`
	IdempotencyKey string            `json:"idempotency_key" validate:"omitempty,max=64"`
}

// HandlePlaceOrder converts a cart into an order. Responds 201 with the
// created order, 409 on insufficient stock, 404 on a stale product reference
// and 400 on validation failures. Retries with the same idempotency key get
// the original order back.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	var req PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	fromStagedCart := len(req.Lines) == 0
	if fromStagedCart {
		lines, err := h.cartService.Lines(c.Context(), actor.UserID)
		if err != nil {
			return respondError(c, err)
		}
		req.Lines = lines
	}

	order, err := h.orderService.PlaceOrder(c.Context(), actor.UserID, req.Lines, req.IdempotencyKey)
	if err != nil {
		return respondError(c, err)
	}

	if fromStagedCart {
		// The order exists either way; an uncleared cart is recoverable.
		_ = h.cartService.ClearCart(c.Context(), actor.UserID)
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// TransitionRequest is the status update payload.
type TransitionRequest struct {
	Status models.OrderStatus `json:"status"`
}

// HandleTransitionStatus moves an order to a new status on behalf of the
// authenticated actor. Responds 400 on an illegal transition and 403 when the
// actor's role may not drive it.
func (h *OrderHandler) HandleTransitionStatus(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	var req TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	order, err := h.orderService.TransitionStatus(c.Context(), c.Params("id"), req.Status, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}
