package handlers

import (
	"strconv"
	"strings"

	"weddingsite/internal/domain"
	applog "weddingsite/internal/log"
	"weddingsite/internal/services"

	"github.com/gofiber/fiber/v2"
)

type GiftHandler struct {
	Gifts *services.GiftService
	Media *services.MediaService
}

// GET /api/gifts
func (h *GiftHandler) List(c *fiber.Ctx) error {
	gifts, err := h.Gifts.List(c.UserContext())
	if err != nil {
		return fail(c, "gifts.list", err)
	}
	return c.JSON(gifts)
}

// GET /api/gifts/:id
func (h *GiftHandler) Get(c *fiber.Ctx) error {
	g, err := h.Gifts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "gifts.get", err)
	}
	return c.JSON(g)
}

// giftInput reads JSON or a multipart form with an optional "image" file.
func (h *GiftHandler) giftInput(c *fiber.Ctx) (services.GiftInput, error) {
	var in services.GiftInput
	if !isMultipart(c) {
		return in, decodeJSON(c, &in)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return in, &services.ValidationError{Field: "body", Msg: "malformed multipart form"}
	}
	in.Name = formString(form, "name")
	in.Description = formString(form, "description")
	if v := formString(form, "price"); v != nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
		if err != nil {
			return in, &services.ValidationError{Field: "price", Msg: "must be a number"}
		}
		p := domain.CentsFromFloat(f)
		in.Price = &p
	}
	if v := formString(form, "stock"); v != nil {
		n, err := strconv.Atoi(strings.TrimSpace(*v))
		if err != nil {
			return in, &services.ValidationError{Field: "stock", Msg: "must be an integer"}
		}
		in.Stock = &n
	}
	url, err := uploadImage(c, h.Media, "image", "gifts")
	if err != nil {
		return in, err
	}
	if url != "" {
		in.ImageURL = &url
	}
	return in, nil
}

// POST /api/gifts
func (h *GiftHandler) Create(c *fiber.Ctx) error {
	in, err := h.giftInput(c)
	if err != nil {
		return fail(c, "gifts.create", err)
	}
	g, err := h.Gifts.Create(c.UserContext(), in)
	if err != nil {
		if in.ImageURL != nil && isMultipart(c) {
			h.Media.Remove(c.UserContext(), *in.ImageURL)
		}
		return fail(c, "gifts.create", err)
	}
	applog.Audit(c, "admin.gifts.create", map[string]any{"gift_id": g.ID, "name": g.Name, "stock": g.Stock})
	return c.Status(fiber.StatusCreated).JSON(g)
}

// PUT /api/gifts/:id
func (h *GiftHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	before, err := h.Gifts.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "gifts.update", err)
	}
	in, err := h.giftInput(c)
	if err != nil {
		return fail(c, "gifts.update", err)
	}
	g, err := h.Gifts.Update(c.UserContext(), id, in)
	if err != nil {
		if in.ImageURL != nil && isMultipart(c) {
			h.Media.Remove(c.UserContext(), *in.ImageURL)
		}
		return fail(c, "gifts.update", err)
	}
	if before.ImageURL != "" && before.ImageURL != g.ImageURL {
		h.Media.Remove(c.UserContext(), before.ImageURL)
	}
	applog.Audit(c, "admin.gifts.update", map[string]any{"gift_id": g.ID, "stock": g.Stock})
	return c.JSON(g)
}

// DELETE /api/gifts/:id
func (h *GiftHandler) Delete(c *fiber.Ctx) error {
	g, err := h.Gifts.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "gifts.delete", err)
	}
	h.Media.Remove(c.UserContext(), g.ImageURL)
	applog.Audit(c, "admin.gifts.delete", map[string]any{"gift_id": g.ID})
	return c.JSON(fiber.Map{"deleted": g.ID})
}
