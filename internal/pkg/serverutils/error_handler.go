package serverutils

import (
	"errors"

	"stockpoints-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps application errors to HTTP statuses so
// controllers can just return service errors.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		status := httpStatusFor(err)
		var appErr *apperror.Error
		message := "internal server error"
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		return ctx.Status(status).JSON(ErrorResponse(status, message))
	}
}

func httpStatusFor(err error) int {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case apperror.CodeNotFound:
		return fiber.StatusNotFound
	case apperror.CodeUnavailable:
		return fiber.StatusServiceUnavailable
	case apperror.CodeInsufficientBalance:
		// Stripe-style "payment required" keeps it distinct from generic 4xx.
		return fiber.StatusPaymentRequired
	case apperror.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case apperror.CodeConflict:
		return fiber.StatusConflict
	case apperror.CodeInvalidInput:
		return fiber.StatusBadRequest
	case apperror.CodeUpstreamFailure:
		if appErr.UpstreamStatus != 0 {
			return appErr.UpstreamStatus
		}
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
