package serverutils

import (
	"errors"
	"net/http/httptest"
	"testing"

	"stockpoints-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestHttpStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperror.NotFound("x"), fiber.StatusNotFound},
		{"unavailable", apperror.Unavailable("x"), fiber.StatusServiceUnavailable},
		{"insufficient balance", apperror.InsufficientBalance("x"), fiber.StatusPaymentRequired},
		{"unauthorized", apperror.Unauthorized("x"), fiber.StatusUnauthorized},
		{"conflict", apperror.Conflict("x"), fiber.StatusConflict},
		{"invalid input", apperror.InvalidInput("x"), fiber.StatusBadRequest},
		{"upstream with status", apperror.Upstream(429, "rate limited", nil), 429},
		{"upstream without status", apperror.Upstream(0, "unreachable", nil), fiber.StatusBadGateway},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpStatusFor(tt.err))
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apperror.NotFound("plan not found")
	})
	app.Get("/broke", func(c *fiber.Ctx) error {
		return apperror.InsufficientBalance("need 10 points")
	})
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.JSON(SuccessResponse("ok", "data"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/broke", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/ok", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
