package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the standard
// response envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

func WriteError(ctx *fiber.Ctx, err error) error {
	code, message := StatusFor(err)
	return ctx.Status(code).JSON(ErrorResponse(code, message))
}

// StatusFor maps an error to the HTTP status and message clients see.
func StatusFor(err error) (int, string) {
	var validationErr *ValidationError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error()
	case errors.Is(err, ErrBadRequest):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, ErrServiceUnavailable):
		return fiber.StatusServiceUnavailable, err.Error()
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
