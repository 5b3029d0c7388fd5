package handlers

import (
	"errors"

	"walletshop/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondError translates service errors into HTTP responses. Domain errors
// map onto 4xx statuses with their code and detail in the body; anything else
// is a 500 infrastructure failure the client may retry idempotently.
func respondError(c *fiber.Ctx, err error) error {
	var (
		invalidQty   *models.InvalidQuantityError
		notFound     *models.ProductNotFoundError
		insufficient *models.InsufficientStockError
		transition   *models.InvalidTransitionError
		domain       *models.DomainError
	)

	switch {
	case errors.As(err, &invalidQty):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":       models.CodeInvalidQuantity,
			"message":    invalidQty.Error(),
			"product_id": invalidQty.ProductID,
			"quantity":   invalidQty.Quantity,
		})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"code":       models.CodeProductNotFound,
			"message":    notFound.Error(),
			"product_id": notFound.ProductID,
		})
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"code":       models.CodeInsufficientStock,
			"message":    insufficient.Error(),
			"shortfalls": insufficient.Shortfalls,
		})
	case errors.As(err, &transition):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":    models.CodeInvalidTransition,
			"message": transition.Error(),
			"from":    transition.From,
			"to":      transition.To,
		})
	case errors.As(err, &domain):
		return c.Status(domainStatus(domain.Code)).JSON(fiber.Map{
			"code":    domain.Code,
			"message": domain.Message,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
			"error":   err.Error(),
		})
	}
}

func domainStatus(code models.ErrorCode) int {
	switch code {
	case models.CodeOrderNotFound, models.CodeUserNotFound, models.CodeProductNotFound:
		return fiber.StatusNotFound
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeAlreadyExists:
		return fiber.StatusConflict
	case models.CodeInsufficientStock:
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}
