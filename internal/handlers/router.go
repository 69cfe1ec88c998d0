package handlers

import (
	"context"
	"errors"
	"time"

	"photo-backend/internal/models"
	"photo-backend/internal/services"
	"photo-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// RouterConfig carries the middleware settings that used to be globals
type RouterConfig struct {
	CORSOrigins  string
	CookieSecret string
	BodyLimit    int
	// DisableLogger silences the access log, tests set it
	DisableLogger bool
}

// NewApp builds the Fiber app with middleware and every route mounted
func NewApp(cfg RouterConfig, photoService *services.PhotoService, hub *CommentHub) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if !cfg.DisableLogger {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	// Cookies are encrypted with COOKIE_SECRET; no route sets one yet
	app.Use(encryptcookie.New(encryptcookie.Config{Key: cfg.CookieSecret}))

	// Routes
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(models.MessageResponse{Message: "Hello from photo-sharing app API!"})
	})

	api := app.Group("/api/photo")
	api.Get("/images/:filename", GetImageHandler(photoService))
	api.Get("/photosOfUser/:id", PhotosOfUserHandler(photoService))
	api.Post("/commentsOfPhoto/:photo_id", AddCommentHandler(photoService))
	api.Post("/new", UploadPhotoHandler(photoService))
	api.Get("/ws/:photo_id", WSUpgradeMiddleware, CommentFeedHandler(hub))

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := photoService.Ping(ctx); err != nil {
			utils.LogError(err, "health")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return app
}

// errorHandler keeps every failure, including unknown routes and recovered
// panics, a JSON object
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Server error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		msg = e.Message
	} else {
		utils.LogError(err, c.Method()+" "+c.Path())
	}

	return c.Status(code).JSON(models.ErrorResponse{Error: msg})
}
