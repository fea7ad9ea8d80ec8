package controller

import (
	"stockpoints-be/internal/dto"
	"stockpoints-be/internal/pkg/serverutils"
	"stockpoints-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IOrderController interface {
	RegisterRoutes(r fiber.Router)
	PlaceOrder(ctx *fiber.Ctx) error
	ListOrders(ctx *fiber.Ctx) error
	DownloadLink(ctx *fiber.Ctx) error
}

type orderController struct {
	orderService service.OrderService
	userService  service.UserService
}

func NewOrderController(orderService service.OrderService, userService service.UserService) IOrderController {
	return &orderController{
		orderService: orderService,
		userService:  userService,
	}
}

func (c *orderController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/orders/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.PlaceOrder)
	h.Get("", c.ListOrders)
	h.Get(":id/download-link", c.DownloadLink)
}

func (c *orderController) PlaceOrder(ctx *fiber.Ctx) error {
	userId, err := c.currentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.PlaceOrderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.orderService.PlaceOrder(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success place order", res))
}

func (c *orderController) ListOrders(ctx *fiber.Ctx) error {
	userId, err := c.currentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.OrderListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}

	res, err := c.orderService.ListOrders(ctx.Context(), userId, req.Page, req.Limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list orders", res))
}

func (c *orderController) DownloadLink(ctx *fiber.Ctx) error {
	userId, err := c.currentUser(ctx)
	if err != nil {
		return err
	}

	orderId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.ErrBadRequest
	}

	res, err := c.orderService.RefreshDownloadLink(ctx.Context(), userId, orderId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get download link", res))
}

func (c *orderController) currentUser(ctx *fiber.Ctx) (uuid.UUID, error) {
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
