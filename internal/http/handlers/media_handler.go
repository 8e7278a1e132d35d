package handlers

import (
	applog "weddingsite/internal/log"
	"weddingsite/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// MediaHandler serves uploads kept on local disk.
type MediaHandler struct {
	Files *storage.Local
}

// GET /media/*
func (h *MediaHandler) Serve(c *fiber.Ctx) error {
	path := c.Params("*")
	full, ok := h.Files.Resolve(path)
	if !ok {
		applog.Security(c, "media.traversal.block", map[string]any{"path": path})
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.SendFile(full, true)
}
