package handlers

import (
	"errors"

	"weddingsite/internal/domain"
	applog "weddingsite/internal/log"
	"weddingsite/internal/services"

	"github.com/gofiber/fiber/v2"
)

type ContentHandler struct {
	Content *services.ContentService
}

// GET /api/content/:section
func (h *ContentHandler) Get(c *fiber.Ctx) error {
	sec, err := h.Content.Get(c.UserContext(), c.Params("section"))
	if errors.Is(err, services.ErrNotFound) {
		return unknownSection(c)
	}
	if err != nil {
		return fail(c, "content.get", err)
	}
	return c.JSON(sec)
}

// PUT /api/content/:section
func (h *ContentHandler) Put(c *fiber.Ctx) error {
	section := c.Params("section")
	sec, err := h.Content.Put(c.UserContext(), section, c.Body())
	if errors.Is(err, services.ErrNotFound) {
		return unknownSection(c)
	}
	if err != nil {
		return fail(c, "content.put", err)
	}
	applog.Audit(c, "admin.content.put", map[string]any{"section": section})
	return c.JSON(sec)
}

func unknownSection(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":    "unknown content section",
		"sections": domain.SectionNames(),
	})
}
