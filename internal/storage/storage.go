package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"lankatrails-backend/internal/config"
)

// Storage is the public disk behind every image upload. Paths passed
// around the application are relative ("guides/3/0_1712345678.jpg");
// URL derives the public form.
type Storage interface {
	Save(folder, name string, data []byte) (string, error)
	Delete(path string) error
	DeleteFolder(folder string) error
	URL(path string) string
}

// New picks the configured driver.
func New(cfg *config.Config) Storage {
	if cfg.StorageDriver == "s3" {
		return NewS3Storage(cfg)
	}
	return NewLocalStorage(cfg.UploadRoot, cfg.PublicBaseURL)
}

// Filename builds a collision-free name from the position of the image
// in its upload batch and the upload time, keeping the original
// extension.
func Filename(seq int, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%d_%d%s", seq, time.Now().Unix(), ext)
}
