package serverutils

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

const RenewalSecretHeader = "X-Renewal-Secret"

// RenewalSecretMiddleware guards the batch trigger with a shared secret
// distinct from user authentication. Requests are rejected before any
// query runs.
func RenewalSecretMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Renewal trigger disabled"})
		}
		provided := ctx.Get(RenewalSecretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid renewal secret"})
		}
		return ctx.Next()
	}
}
