package db

import (
	"context"
	"strings"
	"sync"

	"photo-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Memory is a process-local Store for development and tests. Data is lost
// on restart.
type Memory struct {
	mu     sync.RWMutex
	users  map[bson.ObjectID]models.User
	photos []*models.Photo
}

func NewMemory() *Memory {
	return &Memory{users: make(map[bson.ObjectID]models.User)}
}

func (m *Memory) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[oid]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *Memory) FindPhotosByUser(ctx context.Context, userID string) ([]models.Photo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	photos := []models.Photo{}
	for _, p := range m.photos {
		if p.UserID == userID {
			photos = append(photos, clonePhoto(p))
		}
	}
	return photos, nil
}

func (m *Memory) FindPhotoByID(ctx context.Context, id string) (*models.Photo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p := m.photo(id); p != nil {
		c := clonePhoto(p)
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) InsertUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) InsertPhoto(ctx context.Context, p *models.Photo) error {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	c := clonePhoto(p)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.photos = append(m.photos, &c)
	return nil
}

func (m *Memory) AppendComment(ctx context.Context, photoID string, c models.Comment) (*models.Photo, error) {
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.photo(photoID)
	if p == nil {
		return nil, ErrNotFound
	}
	p.Comments = append(p.Comments, c)
	updated := clonePhoto(p)
	return &updated, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close(ctx context.Context) error { return nil }

// photo must be called with mu held
func (m *Memory) photo(id string) *models.Photo {
	for _, p := range m.photos {
		if strings.EqualFold(p.ID.Hex(), id) {
			return p
		}
	}
	return nil
}

func clonePhoto(p *models.Photo) models.Photo {
	c := *p
	c.Comments = append([]models.Comment{}, p.Comments...)
	return c
}
