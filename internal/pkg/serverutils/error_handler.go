package serverutils

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// NotFoundError marks a missing record; the middleware maps it to 404.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// RateLimitedError carries the retry-after hint for 429 responses.
type RateLimitedError struct {
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	return "too many requests"
}

// ErrorHandlerMiddleware converts errors returned by handlers into the JSON
// envelope, so controllers can just `return err`.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(validationErr.Error()))
		}

		var notFoundErr *NotFoundError
		if errors.As(err, &notFoundErr) {
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(notFoundErr.Error()))
		}

		var rateErr *RateLimitedError
		if errors.As(err, &rateErr) {
			ctx.Set("Retry-After", strconv.Itoa(rateErr.RetryAfterSeconds))
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse("Too many requests"))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
	}
}
