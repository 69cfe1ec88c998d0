package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// maxNameAttempts bounds retries when a generated name already exists
const maxNameAttempts = 5

// Disk keeps files in a single public directory
type Disk struct {
	baseDir string
}

// NewDisk creates the directory if needed
func NewDisk(baseDir string) (*Disk, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &Disk{baseDir: baseDir}, nil
}

func (d *Disk) Store(ctx context.Context, r io.Reader, size int64, originalName string) (string, error) {
	var (
		dst  *os.File
		name string
		err  error
	)
	for i := 0; i < maxNameAttempts; i++ {
		name = GenerateName(originalName, time.Now())
		dst, err = os.OpenFile(filepath.Join(d.baseDir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil || !errors.Is(err, fs.ErrExist) {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	return name, nil
}

func (d *Disk) Retrieve(ctx context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, ErrNotFound
	}
	b, err := os.ReadFile(filepath.Join(d.baseDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}
