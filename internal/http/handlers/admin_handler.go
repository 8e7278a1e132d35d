package handlers

import (
	"weddingsite/internal/services"

	"github.com/gofiber/fiber/v2"
)

const adminListLimit = 200

// AdminHandler serves the back-office order and sale ledgers.
type AdminHandler struct {
	Payments *services.PaymentService
}

// GET /api/orders
func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	ords, err := h.Payments.Orders(c.UserContext(), adminListLimit)
	if err != nil {
		return fail(c, "admin.orders.list", err)
	}
	return c.JSON(ords)
}

// GET /api/sales
func (h *AdminHandler) Sales(c *fiber.Ctx) error {
	sales, err := h.Payments.Sales(c.UserContext(), adminListLimit)
	if err != nil {
		return fail(c, "admin.sales.list", err)
	}
	return c.JSON(sales)
}
