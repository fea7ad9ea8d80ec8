package controller

import (
	"stockpoints-be/internal/pkg/serverutils"
	"stockpoints-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// IRenewalController exposes the renewal batch to the external scheduler.
// The route is guarded by a shared secret, not user auth.
type IRenewalController interface {
	RegisterRoutes(r fiber.Router)
	Run(ctx *fiber.Ctx) error
}

type renewalController struct {
	renewalService service.RenewalService
	secret         string
}

func NewRenewalController(renewalService service.RenewalService, secret string) IRenewalController {
	return &renewalController{
		renewalService: renewalService,
		secret:         secret,
	}
}

func (c *renewalController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/internal/v1")
	h.Use(serverutils.RenewalSecretMiddleware(c.secret))
	h.Post("renewals/run", c.Run)
}

func (c *renewalController) Run(ctx *fiber.Ctx) error {
	res, err := c.renewalService.RunDueRenewals(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Renewal run finished", res))
}
