package handlers

import (
	"walletshop/internal/middleware"
	"walletshop/internal/models"
	"walletshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the pre-order cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/", h.HandleAddItem)
}

// HandleGetCart retrieves the caller's staged cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	items, err := h.service.GetCart(c.Context(), actor.UserID)
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return c.JSON(items)
}

// HandleAddItem stages a customized product in the caller's cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	var item models.CartItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.service.AddItem(c.Context(), actor.UserID, &item); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}
