package controller

import (
	"stockpoints-be/internal/dto"
	"stockpoints-be/internal/pkg/serverutils"
	"stockpoints-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IBillingController interface {
	RegisterRoutes(r fiber.Router)
	ListPlans(ctx *fiber.Ctx) error
	GetBalance(ctx *fiber.Ctx) error
	ListInvoices(ctx *fiber.Ctx) error
	GetSubscription(ctx *fiber.Ctx) error
	Subscribe(ctx *fiber.Ctx) error
	ChangePlan(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type billingController struct {
	planService         service.PlanService
	subscriptionService service.SubscriptionService
	invoiceService      service.InvoiceService
	orderService        service.OrderService
	userService         service.UserService
}

func NewBillingController(
	planService service.PlanService,
	subscriptionService service.SubscriptionService,
	invoiceService service.InvoiceService,
	orderService service.OrderService,
	userService service.UserService,
) IBillingController {
	return &billingController{
		planService:         planService,
		subscriptionService: subscriptionService,
		invoiceService:      invoiceService,
		orderService:        orderService,
		userService:         userService,
	}
}

func (c *billingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/billing/v1")

	// Public: pricing page needs no login.
	h.Get("plans", c.ListPlans)

	protected := h.Group("")
	protected.Use(serverutils.JwtMiddleware)
	protected.Get("balance", c.GetBalance)
	protected.Get("invoices", c.ListInvoices)
	protected.Get("subscription", c.GetSubscription)
	protected.Post("subscribe", c.Subscribe)
	protected.Post("change-plan", c.ChangePlan)
	protected.Post("cancel", c.Cancel)
}

func (c *billingController) ListPlans(ctx *fiber.Ctx) error {
	res, err := c.planService.ListMonthlyPlans(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list plans", res))
}

func (c *billingController) GetBalance(ctx *fiber.Ctx) error {
	userId, err := c.currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.orderService.GetBalance(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get balance", res))
}

func (c *billingController) ListInvoices(ctx *fiber.Ctx) error {
	userId, err := c.currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.invoiceService.ListForUser(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list invoices", res))
}

func (c *billingController) GetSubscription(ctx *fiber.Ctx) error {
	userId, err := c.currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.subscriptionService.GetCurrent(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get subscription", res))
}

func (c *billingController) Subscribe(ctx *fiber.Ctx) error {
	userId, err := c.currentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.SubscribeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.subscriptionService.Subscribe(ctx.Context(), userId, req.PlanId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success subscribe", res))
}

func (c *billingController) ChangePlan(ctx *fiber.Ctx) error {
	userId, err := c.currentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.ChangePlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.subscriptionService.ChangePlan(ctx.Context(), userId, req.PlanId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success change plan", res))
}

func (c *billingController) Cancel(ctx *fiber.Ctx) error {
	userId, err := c.currentUser(ctx)
	if err != nil {
		return err
	}

	req := dto.CancelSubscriptionRequest{CancelAtPeriodEnd: true}
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	res, err := c.subscriptionService.SetCancelAtPeriodEnd(ctx.Context(), userId, req.CancelAtPeriodEnd)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update cancellation", res))
}

// currentUser resolves the authenticated principal and lazily provisions
// the local user row from the token claims.
func (c *billingController) currentUser(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	email, _ := ctx.Locals("user_email").(string)
	fullName, _ := ctx.Locals("user_full_name").(string)
	if _, err := c.userService.EnsureUser(ctx.Context(), userId, email, fullName); err != nil {
		return uuid.Nil, err
	}
	return userId, nil
}
