package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"strings"

	applog "weddingsite/internal/log"
	"weddingsite/internal/services"

	"github.com/gofiber/fiber/v2"
)

// GenericError is the only text a 5xx response ever carries.
const GenericError = "Something went wrong. Please try again."

// fail maps service errors onto status codes. Internals stay in the log.
func fail(c *fiber.Ctx, action string, err error) error {
	var (
		ve *services.ValidationError
		ue *services.UpstreamError
		se *services.StorageError
	)
	switch {
	case errors.As(err, &ve):
		applog.Security(c, "validation.fail", map[string]any{"action": action, "field": ve.Field})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Error(), "field": ve.Field})
	case errors.As(err, &ue), errors.As(err, &se):
		applog.Error(c, action+".fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": GenericError})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, services.ErrOutOfStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "gift is out of stock"})
	case errors.Is(err, services.ErrInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "gift has orders and cannot be deleted"})
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrBadCreds):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	default:
		applog.Error(c, action+".fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": GenericError})
	}
}

func decodeJSON(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(body) == 0 {
		return &services.ValidationError{Field: "body", Msg: "request body required"}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &services.ValidationError{Field: "body", Msg: "malformed JSON"}
	}
	return nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// formString returns a pointer to the form value, or nil when the field is absent.
func formString(form *multipart.Form, key string) *string {
	if vals, ok := form.Value[key]; ok && len(vals) > 0 {
		v := vals[0]
		return &v
	}
	return nil
}

// uploadImage stores the optional file field and returns its URL, or "" when
// no file was sent.
func uploadImage(c *fiber.Ctx, media *services.MediaService, field, folder string) (string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return "", &services.ValidationError{Field: "body", Msg: "malformed multipart form"}
	}
	files := form.File[field]
	if len(files) == 0 {
		return "", nil
	}
	f, err := files[0].Open()
	if err != nil {
		return "", &services.ValidationError{Field: field, Msg: "unreadable upload"}
	}
	defer f.Close()
	return media.SaveImage(c.UserContext(), folder, f)
}
