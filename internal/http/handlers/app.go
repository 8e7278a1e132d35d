package handlers

import (
	"errors"
	"strings"
	"time"

	"weddingsite/internal/config"
	applog "weddingsite/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// BodyLimit bounds request bodies; image uploads are the largest.
const BodyLimit = 10 << 20

// ErrorHandler logs the error and answers with a generic JSON message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": GenericError})
}

// NewApp builds the fiber app with middlewares and every route registered.
func NewApp(d *Deps, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		BodyLimit:    BodyLimit,
	})

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/media/") || p == "/api/payments/webhook"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	Register(app, d)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
	return app
}

// Register mounts the API and, for local storage, the media route.
func Register(app *fiber.App, d *Deps) {
	admin := RequireAdmin(d.Auth)

	if d.MediaHandler != nil {
		app.Get("/media/*", d.MediaHandler.Serve)
	}

	api := app.Group("/api")

	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)

	api.Get("/gifts", d.GiftHandler.List)
	api.Get("/gifts/:id", d.GiftHandler.Get)
	api.Post("/gifts", admin, d.GiftHandler.Create)
	api.Put("/gifts/:id", admin, d.GiftHandler.Update)
	api.Delete("/gifts/:id", admin, d.GiftHandler.Delete)

	api.Post("/rsvp", limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|rsvp"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.rsvp.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), d.RSVPHandler.Submit)
	api.Get("/rsvp", admin, d.RSVPHandler.List)
	api.Get("/rsvp/export", admin, d.RSVPHandler.Export)

	api.Get("/album", d.AlbumHandler.Public)
	api.Get("/album/admin/all", admin, d.AlbumHandler.All)
	api.Get("/album/:gallery", d.AlbumHandler.Gallery)
	api.Post("/album", admin, d.AlbumHandler.Create)
	api.Put("/album/:gallery/reorder", admin, d.AlbumHandler.Reorder)
	api.Put("/album/:id", admin, d.AlbumHandler.Update)
	api.Delete("/album/:id", admin, d.AlbumHandler.Delete)

	api.Get("/story", d.StoryHandler.List)
	api.Post("/story", admin, d.StoryHandler.Create)
	api.Put("/story/:id", admin, d.StoryHandler.Update)
	api.Delete("/story/:id", admin, d.StoryHandler.Delete)

	api.Get("/content/:section", d.ContentHandler.Get)
	api.Put("/content/:section", admin, d.ContentHandler.Put)

	api.Get("/config", OptionalAdmin(d.Auth), d.ConfigHandler.Get)
	api.Put("/config", admin, d.ConfigHandler.Put)

	api.Post("/payments/create-preference", d.PaymentHandler.CreatePreference)
	api.Post("/payments/webhook", d.PaymentHandler.Webhook)
	api.Get("/payments/order/:id", d.PaymentHandler.Order)

	api.Get("/orders", admin, d.AdminHandler.Orders)
	api.Get("/sales", admin, d.AdminHandler.Sales)
}
