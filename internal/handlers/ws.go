package handlers

import (
	"log"

	"photo-backend/internal/db"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// CommentFeedHandler streams every new comment on :photo_id to the client
func CommentFeedHandler(hub *CommentHub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		photoID := db.NormalizeID(c.Params("photo_id"))
		connID := uuid.New().String()

		// Written before Join, nothing else writes to c yet
		if err := c.WriteJSON(fiber.Map{"event": "subscribed", "photo_id": photoID}); err != nil {
			c.Close()
			return
		}

		hub.Join(photoID, connID, c)
		defer func() {
			hub.Leave(photoID, connID)
			c.Close()
		}()

		// Clients only listen; reading detects the disconnect
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("error: %v", err)
				}
				return
			}
		}
	})
}

// WSUpgradeMiddleware rejects anything that is not a websocket upgrade for
// a well-formed photo id
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if !db.ValidID(c.Params("photo_id")) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid photo ID")
	}
	return c.Next()
}
