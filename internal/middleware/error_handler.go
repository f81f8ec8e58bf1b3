package middleware

import (
	"samudra-backend/internal/pkg/apperrors"
	"samudra-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the global error handler. Returns the standard {"error"}
// shape for fiber errors and anything the taxonomy can classify.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return response.Error(c, e.Message, e.Code)
	}
	return response.Error(c, apperrors.Message(err), apperrors.HTTPStatus(err))
}
