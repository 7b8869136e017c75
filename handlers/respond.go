package handlers

import (
	"errors"
	"log"

	"investment-platform/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// respondError maps service errors onto HTTP statuses: validation and
// balance problems are 422, lost state-machine races 409, missing records
// 404, everything else a logged 500.
func respondError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": verr.Error()})
	case errors.Is(err, services.ErrInsufficientBalance), errors.Is(err, services.ErrSelfTransfer):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyProcessed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "record not found"})
	}
	log.Printf("Unhandled service error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
