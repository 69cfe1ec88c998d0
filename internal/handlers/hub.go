package handlers

import (
	"sync"

	"photo-backend/internal/db"
	"photo-backend/internal/models"
	"photo-backend/internal/utils"
)

// JSONWriter is the part of a websocket connection the hub writes to
type JSONWriter interface {
	WriteJSON(v interface{}) error
}

// subscriber serializes writes, websocket conns are not safe for
// concurrent writers
type subscriber struct {
	mu   sync.Mutex
	conn JSONWriter
}

func (s *subscriber) send(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

// CommentHub fans new comments out to the websocket clients watching a photo
type CommentHub struct {
	mu sync.RWMutex
	// photoID -> connID -> subscriber
	photos map[string]map[string]*subscriber
}

func NewCommentHub() *CommentHub {
	return &CommentHub{photos: make(map[string]map[string]*subscriber)}
}

func (h *CommentHub) Join(photoID, connID string, conn JSONWriter) {
	photoID = db.NormalizeID(photoID)
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.photos[photoID]; !ok {
		h.photos[photoID] = make(map[string]*subscriber)
	}
	h.photos[photoID][connID] = &subscriber{conn: conn}
}

func (h *CommentHub) Leave(photoID, connID string) {
	photoID = db.NormalizeID(photoID)
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.photos[photoID]; ok {
		delete(subs, connID)
		if len(subs) == 0 {
			delete(h.photos, photoID)
		}
	}
}

// Subscribers returns how many connections watch photoID
func (h *CommentHub) Subscribers(photoID string) int {
	photoID = db.NormalizeID(photoID)
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.photos[photoID])
}

// PublishComment implements services.CommentPublisher. Write failures are
// logged, the read loop of the failed connection cleans it up.
func (h *CommentHub) PublishComment(photoID string, c models.Comment) {
	photoID = db.NormalizeID(photoID)
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.photos[photoID]))
	for _, s := range h.photos[photoID] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	event := models.CommentEvent{Event: "comment", PhotoID: photoID, Comment: c}
	for _, s := range subs {
		utils.LogError(s.send(event), "PublishComment")
	}
}
