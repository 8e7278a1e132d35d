package handlers

import (
	applog "weddingsite/internal/log"
	"weddingsite/internal/services"

	"github.com/gofiber/fiber/v2"
)

type ConfigHandler struct {
	Config *services.SiteConfigService
	Media  *services.MediaService
}

// GET /api/config. Gateway secrets are included only for an admin token.
func (h *ConfigHandler) Get(c *fiber.Ctx) error {
	cfg, err := h.Config.Get(c.UserContext())
	if err != nil {
		return fail(c, "config.get", err)
	}
	if isAdmin(c) {
		return c.JSON(cfg)
	}
	return c.JSON(cfg.Public())
}

var configFormFields = []string{
	"site_title", "wedding_date", "pix_key", "pix_description", "mp_public_key", "mp_access_token",
}

// PUT /api/config (JSON, or multipart with an optional pix_qr_image file)
func (h *ConfigHandler) Put(c *fiber.Ctx) error {
	var in services.SiteConfigInput
	var uploaded string
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return fail(c, "config.put", &services.ValidationError{Field: "body", Msg: "malformed multipart form"})
		}
		vals := make(map[string]*string, len(configFormFields))
		for _, f := range configFormFields {
			vals[f] = formString(form, f)
		}
		in = services.SiteConfigInput{
			SiteTitle:      vals["site_title"],
			WeddingDate:    vals["wedding_date"],
			PixKey:         vals["pix_key"],
			PixDescription: vals["pix_description"],
			MPPublicKey:    vals["mp_public_key"],
			MPAccessToken:  vals["mp_access_token"],
		}
		if uploaded, err = uploadImage(c, h.Media, "pix_qr_image", "config"); err != nil {
			return fail(c, "config.put", err)
		}
		if uploaded != "" {
			in.PixQRImage = &uploaded
		}
	} else if err := decodeJSON(c, &in); err != nil {
		return fail(c, "config.put", err)
	}

	before, err := h.Config.Get(c.UserContext())
	if err != nil {
		h.Media.Remove(c.UserContext(), uploaded)
		return fail(c, "config.put", err)
	}
	cfg, err := h.Config.Update(c.UserContext(), in)
	if err != nil {
		h.Media.Remove(c.UserContext(), uploaded)
		return fail(c, "config.put", err)
	}
	if uploaded != "" && before.PixQRImage != cfg.PixQRImage {
		h.Media.Remove(c.UserContext(), before.PixQRImage)
	}
	applog.Audit(c, "admin.config.update", map[string]any{
		"access_token_changed": in.MPAccessToken != nil,
		"pix_qr_uploaded":      uploaded != "",
	})
	return c.JSON(cfg)
}
