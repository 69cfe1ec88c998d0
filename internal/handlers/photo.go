package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"photo-backend/internal/models"
	"photo-backend/internal/services"
	"photo-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// GetImageHandler serves a stored photo file by bare name
func GetImageHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("filename")
		b, err := photoService.RetrieveFile(c.UserContext(), name)
		if err != nil {
			return writeError(c, err, "Failed to read image")
		}

		if ext := filepath.Ext(name); ext != "" {
			c.Type(ext)
		} else {
			c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
		}
		return c.Send(b)
	}
}

// PhotosOfUserHandler lists the photos of :id with their comments
func PhotosOfUserHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		views, err := photoService.ListPhotosForUser(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err, "Server error")
		}
		return c.JSON(views)
	}
}

// AddCommentHandler appends a comment to :photo_id and returns the photo
func AddCommentHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.AddCommentRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{Error: "Invalid request"})
		}

		photo, err := photoService.AddComment(c.UserContext(), c.Params("photo_id"), req.Comment, req.UserID)
		if err != nil {
			return writeError(c, err, "Failed to add comment")
		}
		return c.JSON(photo)
	}
}

// UploadPhotoHandler expects a multipart form with file field "photo" and
// text field "userId"
func UploadPhotoHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("photo")
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{Error: "No file uploaded"})
		}

		if _, err := photoService.UploadPhoto(c.UserContext(), c.FormValue("userId"), fileHeader); err != nil {
			return writeError(c, err, "Failed to upload photo")
		}
		return c.JSON(models.MessageResponse{Message: "Photo uploaded successfully"})
	}
}

// writeError maps service errors to a status and JSON body. Anything
// unexpected is logged and answered with fallback.
func writeError(c *fiber.Ctx, err error, fallback string) error {
	status := http.StatusInternalServerError
	msg := fallback

	switch {
	case errors.Is(err, services.ErrInvalidID):
		status, msg = http.StatusBadRequest, "Invalid user ID"
	case errors.Is(err, services.ErrEmptyComment):
		status, msg = http.StatusBadRequest, "Comment cannot be empty"
	case errors.Is(err, services.ErrNoFile):
		status, msg = http.StatusBadRequest, "No file uploaded"
	case errors.Is(err, services.ErrUserNotFound):
		status, msg = http.StatusNotFound, "User not found"
	case errors.Is(err, services.ErrPhotoNotFound):
		status, msg = http.StatusNotFound, "Photo not found"
	case errors.Is(err, services.ErrFileNotFound):
		status, msg = http.StatusNotFound, "File not found"
	default:
		utils.LogError(err, c.Method()+" "+c.Path())
	}

	return c.Status(status).JSON(models.ErrorResponse{Error: msg})
}
