package filestore

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested file does not exist or the name
// could escape the store
var ErrNotFound = errors.New("file not found")

// FileStore persists uploaded photo files under generated names
type FileStore interface {
	Store(ctx context.Context, r io.Reader, size int64, originalName string) (string, error)
	Retrieve(ctx context.Context, name string) ([]byte, error)
}

// GenerateName builds "<ms>-<rand><ms><ext>" for an uploaded file. The random
// part is in [0, 1e9).
func GenerateName(originalName string, now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	return ms + "-" + strconv.Itoa(rand.Intn(1e9)) + ms + safeExt(originalName)
}

func safeExt(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) < 2 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// validName reports whether name is a bare file name
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || strings.ContainsRune(name, 0) {
		return false
	}
	return true
}
