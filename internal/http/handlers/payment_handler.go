package handlers

import (
	"strings"

	"weddingsite/internal/gateway"
	applog "weddingsite/internal/log"
	"weddingsite/internal/services"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	Payments *services.PaymentService
}

// POST /api/payments/create-preference
func (h *PaymentHandler) CreatePreference(c *fiber.Ctx) error {
	var in services.CheckoutInput
	if err := decodeJSON(c, &in); err != nil {
		return fail(c, "payments.preference", err)
	}
	res, err := h.Payments.CreatePreference(c.UserContext(), in)
	if err != nil {
		return fail(c, "payments.preference", err)
	}
	return c.JSON(res)
}

// webhookHeaders are the signature headers the gateways send.
var webhookHeaders = []string{"x-signature", "x-request-id", "stripe-signature"}

// POST /api/payments/webhook
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	raw := gateway.RawNotification{
		Body:    append([]byte(nil), c.Body()...),
		Query:   c.Queries(),
		Headers: make(map[string]string, len(webhookHeaders)),
	}
	for _, k := range webhookHeaders {
		if v := c.Get(k); v != "" {
			raw.Headers[strings.ToLower(k)] = v
		}
	}

	res, err := h.Payments.HandleNotification(c.UserContext(), raw)
	if err != nil {
		return fail(c, "payments.webhook", err)
	}
	if !res.Ignored {
		applog.Info(c, "payments.webhook", map[string]any{
			"order_id": res.OrderID, "status": res.OrderStatus, "sale_created": res.SaleCreated,
		})
	}
	return c.JSON(res)
}

// GET /api/payments/order/:id
func (h *PaymentHandler) Order(c *fiber.Ctx) error {
	o, err := h.Payments.Order(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "payments.order", err)
	}
	return c.JSON(o)
}
