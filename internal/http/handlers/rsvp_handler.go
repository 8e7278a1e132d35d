package handlers

import (
	"bytes"

	applog "weddingsite/internal/log"
	"weddingsite/internal/services"

	"github.com/gofiber/fiber/v2"
)

type RSVPHandler struct {
	RSVPs *services.RSVPService
}

// POST /api/rsvp
func (h *RSVPHandler) Submit(c *fiber.Ctx) error {
	var in services.RSVPInput
	if err := decodeJSON(c, &in); err != nil {
		return fail(c, "rsvp.submit", err)
	}
	r, err := h.RSVPs.Submit(c.UserContext(), in)
	if err != nil {
		return fail(c, "rsvp.submit", err)
	}
	applog.Info(c, "rsvp.submit", map[string]any{"rsvp_id": r.ID, "companions": r.Companions, "confirmed": r.Confirmed})
	return c.Status(fiber.StatusCreated).JSON(r)
}

// GET /api/rsvp
func (h *RSVPHandler) List(c *fiber.Ctx) error {
	rows, err := h.RSVPs.List(c.UserContext())
	if err != nil {
		return fail(c, "rsvp.list", err)
	}
	return c.JSON(rows)
}

// GET /api/rsvp/export
func (h *RSVPHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.RSVPs.ExportCSV(c.UserContext(), &buf); err != nil {
		return fail(c, "rsvp.export", err)
	}
	applog.Audit(c, "admin.rsvp.export", map[string]any{"bytes": buf.Len()})
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="rsvps.csv"`)
	return c.Send(buf.Bytes())
}
