package handlers

import (
	"fmt"

	"walletshop/internal/models"
	"walletshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CustomizationHandler handles HTTP requests for customization options.
type CustomizationHandler struct {
	service  *services.CustomizationService
	validate *validator.Validate
}

// NewCustomizationHandler creates a new CustomizationHandler.
func NewCustomizationHandler(service *services.CustomizationService) *CustomizationHandler {
	return &CustomizationHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the customization routes with the Fiber app.
// Listing is open to authenticated callers; mutations go through adminOnly.
func (h *CustomizationHandler) RegisterRoutes(router fiber.Router, adminOnly fiber.Handler) {
	routes := router.Group("/customizations")
	routes.Get("/", h.HandleGetOptions)
	routes.Post("/", adminOnly, h.HandleCreateOption)
	routes.Delete("/:id", adminOnly, h.HandleDeleteOption)
}

// HandleGetOptions lists all customization options.
func (h *CustomizationHandler) HandleGetOptions(c *fiber.Ctx) error {
	options, err := h.service.GetAllOptions(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	if options == nil {
		options = []models.CustomizationOption{}
	}
	return c.JSON(options)
}

// HandleCreateOption creates a new customization option.
func (h *CustomizationHandler) HandleCreateOption(c *fiber.Ctx) error {
	var option models.CustomizationOption
	if err := c.BodyParser(&option); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(option); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.service.CreateOption(c.Context(), &option); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(option)
}

// HandleDeleteOption deletes a customization option.
func (h *CustomizationHandler) HandleDeleteOption(c *fiber.Ctx) error {
	if err := h.service.DeleteOption(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Customization option deletion failed: %v", err),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Customization option %s deleted successfully", c.Params("id")),
	})
}
