package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// NotFoundMatcher lets the service layer register its own not-found sentinels
// without serverutils importing it.
type NotFoundMatcher func(err error) bool

// ErrorHandlerMiddleware renders errors returned by handlers as ErrorResponse
// envelopes: AppError and fiber.Error keep their codes, errors matched by
// isNotFound become 404, anything else 500.
func ErrorHandlerMiddleware(isNotFound ...NotFoundMatcher) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := StatusFor(err, isNotFound...)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

func StatusFor(err error, isNotFound ...NotFoundMatcher) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, appErr.Message
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	for _, match := range isNotFound {
		if match(err) {
			return fiber.StatusNotFound, err.Error()
		}
	}

	return fiber.StatusInternalServerError, "Internal server error"
}
