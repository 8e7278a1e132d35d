package handlers

import (
	"strconv"

	applog "weddingsite/internal/log"
	"weddingsite/internal/services"

	"github.com/gofiber/fiber/v2"
)

type StoryHandler struct {
	Story *services.StoryService
	Media *services.MediaService
}

// GET /api/story
func (h *StoryHandler) List(c *fiber.Ctx) error {
	events, err := h.Story.List(c.UserContext())
	if err != nil {
		return fail(c, "story.list", err)
	}
	return c.JSON(events)
}

// storyInput reads JSON or a multipart form. The second return is the newly
// uploaded image, if any, so failures can clean it up.
func (h *StoryHandler) storyInput(c *fiber.Ctx) (services.StoryInput, string, error) {
	var in services.StoryInput
	if !isMultipart(c) {
		return in, "", decodeJSON(c, &in)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return in, "", &services.ValidationError{Field: "body", Msg: "malformed multipart form"}
	}
	in.Title = formString(form, "title")
	in.DateLabel = formString(form, "date_label")
	in.Text = formString(form, "text")
	if v := formString(form, "order"); v != nil {
		n, err := strconv.Atoi(*v)
		if err != nil {
			return in, "", &services.ValidationError{Field: "order", Msg: "must be an integer"}
		}
		in.Order = &n
	}
	url, err := uploadImage(c, h.Media, "image", "story")
	if err != nil {
		return in, "", err
	}
	if url != "" {
		in.ImageURL = &url
	}
	return in, url, nil
}

// POST /api/story
func (h *StoryHandler) Create(c *fiber.Ctx) error {
	in, uploaded, err := h.storyInput(c)
	if err != nil {
		return fail(c, "story.create", err)
	}
	e, err := h.Story.Create(c.UserContext(), in)
	if err != nil {
		h.Media.Remove(c.UserContext(), uploaded)
		return fail(c, "story.create", err)
	}
	applog.Audit(c, "admin.story.create", map[string]any{"event_id": e.ID})
	return c.Status(fiber.StatusCreated).JSON(e)
}

// PUT /api/story/:id
func (h *StoryHandler) Update(c *fiber.Ctx) error {
	in, uploaded, err := h.storyInput(c)
	if err != nil {
		return fail(c, "story.update", err)
	}
	e, err := h.Story.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		h.Media.Remove(c.UserContext(), uploaded)
		return fail(c, "story.update", err)
	}
	applog.Audit(c, "admin.story.update", map[string]any{"event_id": e.ID})
	return c.JSON(e)
}

// DELETE /api/story/:id
func (h *StoryHandler) Delete(c *fiber.Ctx) error {
	e, err := h.Story.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "story.delete", err)
	}
	h.Media.Remove(c.UserContext(), e.ImageURL)
	applog.Audit(c, "admin.story.delete", map[string]any{"event_id": e.ID})
	return c.JSON(fiber.Map{"deleted": e.ID})
}
