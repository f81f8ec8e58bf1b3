package response

import (
	"samudra-backend/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

// JSON sends a 200 OK with the given payload.
func JSON(c *fiber.Ctx, payload interface{}) error {
	return c.Status(fiber.StatusOK).JSON(payload)
}

// Created sends a 201 Created with the given payload.
func Created(c *fiber.Ctx, payload interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(payload)
}

// Error sends the standard error shape {"error": message}.
func Error(c *fiber.Ctx, message string, statusCode int) error {
	return c.Status(statusCode).JSON(fiber.Map{"error": message})
}

// FromError maps a service error to the wire format via the error taxonomy.
func FromError(c *fiber.Ctx, err error) error {
	return Error(c, apperrors.Message(err), apperrors.HTTPStatus(err))
}

// Unauthorized sends 401 with the standard error shape.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized)
}

// Forbidden sends 403 with the standard error shape.
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusForbidden)
}
