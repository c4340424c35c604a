package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/greenchain/internal/logs"
	"github.com/example/greenchain/internal/models"
)

// Success writes the standard envelope with success=true.
func Success(c *fiber.Ctx, status int, message string, data map[string]interface{}) error {
	return c.Status(status).JSON(models.Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Fail writes the standard envelope with success=false and optional
// field-level errors.
func Fail(c *fiber.Ctx, status int, message string, errs ...models.FieldError) error {
	return c.Status(status).JSON(models.Envelope{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// ErrorHandler is the app-wide Fiber error handler. Explicit fiber errors
// keep their status and message; anything else is logged and returned as a
// generic 500 so internal details never leak to clients.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return Fail(c, fiberErr.Code, fiberErr.Message)
	}

	logs.Logger.WithError(err).WithField("path", c.Path()).Error("unhandled error")
	return Fail(c, fiber.StatusInternalServerError, "Internal server error")
}
