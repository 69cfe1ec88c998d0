package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"photo-backend/internal/db"
	"photo-backend/internal/filestore"
	"photo-backend/internal/models"
)

// countingStore records how often the user collection is queried
type countingStore struct {
	db.Store
	userLookups atomic.Int32
}

func (c *countingStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	c.userLookups.Add(1)
	return c.Store.FindUserByID(ctx, id)
}

type recordingFeed struct {
	mu     sync.Mutex
	events map[string][]models.Comment
}

func (r *recordingFeed) PublishComment(photoID string, c models.Comment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = make(map[string][]models.Comment)
	}
	r.events[photoID] = append(r.events[photoID], c)
}

func newTestService(t *testing.T) (*PhotoService, *countingStore, *recordingFeed) {
	t.Helper()
	files, err := filestore.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	store := &countingStore{Store: db.NewMemory()}
	feed := &recordingFeed{}
	return NewPhotoService(store, files, feed), store, feed
}

func newFileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}

func addUser(t *testing.T, s db.Store) string {
	t.Helper()
	u := &models.User{FirstName: "Test"}
	if err := s.InsertUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u.ID.Hex()
}

func TestUploadPhoto_NoFile(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.UploadPhoto(context.Background(), "u1", nil); !errors.Is(err, ErrNoFile) {
		t.Errorf("expected ErrNoFile, got %v", err)
	}
}

func TestUploadThenList(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	userID := addUser(t, store)

	photo, err := svc.UploadPhoto(ctx, userID, newFileHeader(t, "photo", "beach.JPG", []byte("jpegdata")))
	if err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}

	views, err := svc.ListPhotosForUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListPhotosForUser: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 photo, got %d", len(views))
	}
	v := views[0]
	if v.ID != photo.ID || v.UserID != userID {
		t.Errorf("unexpected view %#v", v)
	}
	if v.Comments == nil || len(v.Comments) != 0 {
		t.Errorf("expected empty comments, got %#v", v.Comments)
	}

	b, err := svc.RetrieveFile(ctx, v.FileName)
	if err != nil {
		t.Fatalf("RetrieveFile: %v", err)
	}
	if string(b) != "jpegdata" {
		t.Errorf("unexpected file content %q", b)
	}
}

func TestUploadPhoto_DoesNotRequireExistingUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	photo, err := svc.UploadPhoto(context.Background(), "not-a-user", newFileHeader(t, "photo", "a.png", []byte("x")))
	if err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}
	if photo.UserID != "not-a-user" {
		t.Errorf("expected user id to be stored as given, got %q", photo.UserID)
	}
}

func TestListPhotosForUser_InvalidIDSkipsStore(t *testing.T) {
	svc, store, _ := newTestService(t)
	if _, err := svc.ListPhotosForUser(context.Background(), "abc"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if n := store.userLookups.Load(); n != 0 {
		t.Errorf("expected no store query, got %d", n)
	}
}

func TestListPhotosForUser_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.ListPhotosForUser(context.Background(), "507f1f77bcf86cd799439011"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListPhotosForUser_NoPhotos(t *testing.T) {
	svc, store, _ := newTestService(t)
	views, err := svc.ListPhotosForUser(context.Background(), addUser(t, store))
	if err != nil {
		t.Fatalf("ListPhotosForUser: %v", err)
	}
	if views == nil || len(views) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", views)
	}
}

func TestAddComment_Empty(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	photo, err := svc.UploadPhoto(ctx, addUser(t, store), newFileHeader(t, "photo", "a.jpg", []byte("x")))
	if err != nil {
		t.Fatal(err)
	}

	for _, text := range []string{"", "   "} {
		if _, err := svc.AddComment(ctx, photo.ID.Hex(), text, "u2"); !errors.Is(err, ErrEmptyComment) {
			t.Errorf("AddComment(%q): expected ErrEmptyComment, got %v", text, err)
		}
	}

	p, err := store.FindPhotoByID(ctx, photo.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Comments) != 0 {
		t.Errorf("comments changed: %#v", p.Comments)
	}
}

func TestAddComment_UnknownPhoto(t *testing.T) {
	svc, _, _ := newTestService(t)
	for _, id := range []string{"507f1f77bcf86cd799439011", "garbage"} {
		if _, err := svc.AddComment(context.Background(), id, "hi", "u2"); !errors.Is(err, ErrPhotoNotFound) {
			t.Errorf("AddComment(%q): expected ErrPhotoNotFound, got %v", id, err)
		}
	}
}

func TestAddComment_AppendsAndPublishes(t *testing.T) {
	svc, store, feed := newTestService(t)
	ctx := context.Background()
	photo, err := svc.UploadPhoto(ctx, addUser(t, store), newFileHeader(t, "photo", "a.jpg", []byte("x")))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.AddComment(ctx, photo.ID.Hex(), "first", "u2"); err != nil {
		t.Fatal(err)
	}
	updated, err := svc.AddComment(ctx, photo.ID.Hex(), "nice!", "u3")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	if len(updated.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(updated.Comments))
	}
	last := updated.Comments[1]
	if last.Comment != "nice!" || last.UserID != "u3" || last.DateTime.IsZero() || last.ID.IsZero() {
		t.Errorf("unexpected comment %#v", last)
	}
	if updated.Comments[0].Comment != "first" {
		t.Errorf("prior comment missing: %#v", updated.Comments[0])
	}

	published := feed.events[photo.ID.Hex()]
	if len(published) != 2 || published[1].ID != last.ID {
		t.Errorf("unexpected published comments %#v", published)
	}
}

func TestAddComment_Concurrent(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	photo, err := svc.UploadPhoto(ctx, addUser(t, store), newFileHeader(t, "photo", "a.jpg", []byte("x")))
	if err != nil {
		t.Fatal(err)
	}

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.AddComment(ctx, photo.ID.Hex(), fmt.Sprintf("comment %d", i), ""); err != nil {
				t.Errorf("AddComment: %v", err)
			}
		}(i)
	}
	wg.Wait()

	p, err := store.FindPhotoByID(ctx, photo.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Comments) != n {
		t.Fatalf("expected %d comments, got %d", n, len(p.Comments))
	}
	seen := make(map[string]bool)
	for _, c := range p.Comments {
		if seen[c.Comment] {
			t.Errorf("duplicate comment %q", c.Comment)
		}
		seen[c.Comment] = true
	}
}

func TestRetrieveFile_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	for _, name := range []string{"missing.jpg", "../etc/passwd"} {
		if _, err := svc.RetrieveFile(context.Background(), name); !errors.Is(err, ErrFileNotFound) {
			t.Errorf("RetrieveFile(%q): expected ErrFileNotFound, got %v", name, err)
		}
	}
}

func TestListPhotosForUser_IDCaseInsensitive(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	userID := addUser(t, store)

	if _, err := svc.UploadPhoto(ctx, userID, newFileHeader(t, "photo", "a.jpg", []byte("x"))); err != nil {
		t.Fatal(err)
	}
	upper, err := svc.UploadPhoto(ctx, strings.ToUpper(userID), newFileHeader(t, "photo", "b.jpg", []byte("y")))
	if err != nil {
		t.Fatal(err)
	}
	if upper.UserID != userID {
		t.Errorf("expected stored user id %q, got %q", userID, upper.UserID)
	}

	for _, id := range []string{userID, strings.ToUpper(userID)} {
		views, err := svc.ListPhotosForUser(ctx, id)
		if err != nil {
			t.Fatalf("ListPhotosForUser(%q): %v", id, err)
		}
		if len(views) != 2 {
			t.Errorf("ListPhotosForUser(%q): expected 2 photos, got %d", id, len(views))
		}
	}
}

func TestAddComment_UpperCasePhotoIDPublishesNormalized(t *testing.T) {
	svc, store, feed := newTestService(t)
	ctx := context.Background()
	photo, err := svc.UploadPhoto(ctx, addUser(t, store), newFileHeader(t, "photo", "a.jpg", []byte("x")))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.AddComment(ctx, strings.ToUpper(photo.ID.Hex()), "hi", "u2"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if n := len(feed.events[photo.ID.Hex()]); n != 1 {
		t.Errorf("expected 1 published comment under the lower-case id, got %d", n)
	}
}
