package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/worklog-labs/gitjournal-backend/internal/apperr"
	"github.com/worklog-labs/gitjournal-backend/internal/dto"
)

// fail maps a service error to its HTTP response. Untyped errors collapse to
// a generic 500 so internals never leak to the caller.
func fail(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:   true,
		Message: apperr.Message(err),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
