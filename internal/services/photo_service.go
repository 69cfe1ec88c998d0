package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"photo-backend/internal/db"
	"photo-backend/internal/filestore"
	"photo-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrInvalidID     = errors.New("invalid user id")
	ErrUserNotFound  = errors.New("user not found")
	ErrPhotoNotFound = errors.New("photo not found")
	ErrEmptyComment  = errors.New("comment cannot be empty")
	ErrNoFile        = errors.New("no file uploaded")
	ErrFileNotFound  = errors.New("file not found")
)

// CommentPublisher is told about every comment after it has been stored
type CommentPublisher interface {
	PublishComment(photoID string, c models.Comment)
}

type PhotoService struct {
	store db.Store
	files filestore.FileStore
	feed  CommentPublisher
	now   func() time.Time
}

// NewPhotoService wires the service. feed may be nil.
func NewPhotoService(store db.Store, files filestore.FileStore, feed CommentPublisher) *PhotoService {
	return &PhotoService{
		store: store,
		files: files,
		feed:  feed,
		now:   time.Now,
	}
}

// UploadPhoto stores the file and records a new photo owned by userID.
// The user is not looked up first.
func (s *PhotoService) UploadPhoto(ctx context.Context, userID string, fh *multipart.FileHeader) (*models.Photo, error) {
	if fh == nil {
		return nil, ErrNoFile
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	name, err := s.files.Store(ctx, f, fh.Size, fh.Filename)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	photo := &models.Photo{
		UserID:   db.NormalizeID(userID),
		FileName: name,
		DateTime: s.now().UTC(),
		Comments: []models.Comment{},
	}
	if err := s.store.InsertPhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("insert photo: %w", err)
	}
	return photo, nil
}

// ListPhotosForUser returns every photo of an existing user
func (s *PhotoService) ListPhotosForUser(ctx context.Context, userID string) ([]models.PhotoView, error) {
	if !db.ValidID(userID) {
		return nil, ErrInvalidID
	}
	userID = db.NormalizeID(userID)

	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrInvalidID) {
			return nil, ErrInvalidID
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	photos, err := s.store.FindPhotosByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find photos: %w", err)
	}

	views := make([]models.PhotoView, 0, len(photos))
	for _, p := range photos {
		views = append(views, p.View())
	}
	return views, nil
}

// AddComment appends a comment to the photo and returns the whole updated
// photo. authorID is stored as given.
func (s *PhotoService) AddComment(ctx context.Context, photoID, text, authorID string) (*models.Photo, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}

	existing, err := s.store.FindPhotoByID(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("find photo: %w", err)
	}
	if existing == nil {
		return nil, ErrPhotoNotFound
	}

	comment := models.Comment{
		ID:       bson.NewObjectID(),
		Comment:  text,
		UserID:   authorID,
		DateTime: s.now().UTC(),
	}
	updated, err := s.store.AppendComment(ctx, photoID, comment)
	if err != nil {
		// deleted between the lookup and the push
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("append comment: %w", err)
	}

	if s.feed != nil {
		s.feed.PublishComment(updated.ID.Hex(), comment)
	}
	return updated, nil
}

// RetrieveFile returns the bytes of a stored photo file
func (s *PhotoService) RetrieveFile(ctx context.Context, name string) ([]byte, error) {
	b, err := s.files.Retrieve(ctx, name)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return b, nil
}

// Ping checks the document store
func (s *PhotoService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
