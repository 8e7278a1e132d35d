package handlers

import (
	"strconv"

	applog "weddingsite/internal/log"
	"weddingsite/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AlbumHandler struct {
	Album *services.AlbumService
	Media *services.MediaService
}

// GET /api/album
func (h *AlbumHandler) Public(c *fiber.Ctx) error {
	photos, err := h.Album.Public(c.UserContext())
	if err != nil {
		return fail(c, "album.list", err)
	}
	return c.JSON(photos)
}

// GET /api/album/:gallery
func (h *AlbumHandler) Gallery(c *fiber.Ctx) error {
	photos, err := h.Album.Gallery(c.UserContext(), c.Params("gallery"))
	if err != nil {
		return fail(c, "album.gallery", err)
	}
	return c.JSON(photos)
}

// GET /api/album/admin/all
func (h *AlbumHandler) All(c *fiber.Ctx) error {
	photos, err := h.Album.All(c.UserContext())
	if err != nil {
		return fail(c, "album.all", err)
	}
	return c.JSON(photos)
}

func (h *AlbumHandler) photoInput(c *fiber.Ctx) (services.PhotoInput, error) {
	var in services.PhotoInput
	if !isMultipart(c) {
		return in, decodeJSON(c, &in)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return in, &services.ValidationError{Field: "body", Msg: "malformed multipart form"}
	}
	in.Gallery = formString(form, "gallery")
	in.Title = formString(form, "title")
	if v := formString(form, "active"); v != nil {
		b, err := strconv.ParseBool(*v)
		if err != nil {
			return in, &services.ValidationError{Field: "active", Msg: "must be true or false"}
		}
		in.Active = &b
	}
	in.ImageURL, err = uploadImage(c, h.Media, "image", "album")
	return in, err
}

// POST /api/album (multipart: image, gallery, title)
func (h *AlbumHandler) Create(c *fiber.Ctx) error {
	if !isMultipart(c) {
		return fail(c, "album.create", &services.ValidationError{Field: "image", Msg: "multipart upload required"})
	}
	in, err := h.photoInput(c)
	if err != nil {
		return fail(c, "album.create", err)
	}
	p, err := h.Album.Add(c.UserContext(), in)
	if err != nil {
		h.Media.Remove(c.UserContext(), in.ImageURL)
		return fail(c, "album.create", err)
	}
	applog.Audit(c, "admin.album.create", map[string]any{"photo_id": p.ID, "gallery": p.Gallery})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/album/:id
func (h *AlbumHandler) Update(c *fiber.Ctx) error {
	in, err := h.photoInput(c)
	if err != nil {
		return fail(c, "album.update", err)
	}
	before, err := h.Album.Photo(c.UserContext(), c.Params("id"))
	if err != nil {
		h.Media.Remove(c.UserContext(), in.ImageURL)
		return fail(c, "album.update", err)
	}
	p, err := h.Album.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		h.Media.Remove(c.UserContext(), in.ImageURL)
		return fail(c, "album.update", err)
	}
	if before.ImageURL != p.ImageURL {
		h.Media.Remove(c.UserContext(), before.ImageURL)
	}
	applog.Audit(c, "admin.album.update", map[string]any{"photo_id": p.ID, "active": p.Active})
	return c.JSON(p)
}

// DELETE /api/album/:id
func (h *AlbumHandler) Delete(c *fiber.Ctx) error {
	p, err := h.Album.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "album.delete", err)
	}
	h.Media.Remove(c.UserContext(), p.ImageURL)
	applog.Audit(c, "admin.album.delete", map[string]any{"photo_id": p.ID, "gallery": p.Gallery})
	return c.JSON(fiber.Map{"deleted": p.ID})
}

// PUT /api/album/:gallery/reorder  body: [{"id": "...", "order": 0}, ...]
func (h *AlbumHandler) Reorder(c *fiber.Ctx) error {
	var items []services.ReorderItem
	if err := decodeJSON(c, &items); err != nil {
		return fail(c, "album.reorder", err)
	}
	photos, err := h.Album.Reorder(c.UserContext(), c.Params("gallery"), items)
	if err != nil {
		return fail(c, "album.reorder", err)
	}
	applog.Audit(c, "admin.album.reorder", map[string]any{"gallery": c.Params("gallery"), "count": len(items)})
	return c.JSON(photos)
}
