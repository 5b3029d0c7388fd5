package handlers

import (
	"fmt"

	"walletshop/internal/models"
	"walletshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles admin-side user management requests.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes registers the user management routes. Both routes are
// admin-only.
func (h *UserHandler) RegisterRoutes(router fiber.Router, adminOnly fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", adminOnly, h.HandleGetUsers)
	userRoutes.Delete("/:id", adminOnly, h.HandleDeleteUser)
}

// HandleGetUsers lists all user accounts without password hashes.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAllUsers(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	for i := range users {
		users[i].Password = ""
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(users)
}

// HandleDeleteUser removes a user account.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.service.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("User %s deleted successfully", c.Params("id")),
	})
}
