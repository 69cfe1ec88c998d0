package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"photo-backend/internal/config"
	"photo-backend/internal/models"
)

var (
	// ErrInvalidID means the id is not a 24 character hex object id
	ErrInvalidID = errors.New("invalid id")
	ErrNotFound  = errors.New("document not found")
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// ValidID reports whether id has the document store's identifier format
func ValidID(id string) bool {
	return objectIDPattern.MatchString(id)
}

// NormalizeID lower-cases a well-formed id the way ObjectID.Hex does, so
// ids compare equal whatever case the client sent. Other strings are
// returned unchanged.
func NormalizeID(id string) string {
	if !ValidID(id) {
		return id
	}
	return strings.ToLower(id)
}

// Store is the document store holding users and photos. Photos embed
// their comments.
type Store interface {
	// FindUserByID returns ErrInvalidID before querying if id is malformed,
	// and a nil user when none exists.
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindPhotosByUser(ctx context.Context, userID string) ([]models.Photo, error)
	FindPhotoByID(ctx context.Context, id string) (*models.Photo, error)
	InsertUser(ctx context.Context, u *models.User) error
	InsertPhoto(ctx context.Context, p *models.Photo) error
	// AppendComment pushes c to the tail of the photo's comments in one
	// atomic operation and returns the updated photo.
	AppendComment(ctx context.Context, photoID string, c models.Comment) (*models.Photo, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the backend named by cfg.DBDriver
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		return NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverPostgres:
		return NewPostgres(ctx, cfg.DatabaseURL)
	case config.DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}
