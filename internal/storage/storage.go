package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/yukikurage/employee-management/internal/config"
)

var (
	// ErrObjectNotFound is returned by Open when no file is stored under the name.
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrInvalidName is returned when a name is empty or not already sanitized.
	ErrInvalidName = errors.New("storage: invalid file name")
)

// Storage keeps uploaded files in a flat namespace keyed by sanitized name.
// Writing an existing name replaces the previous content.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (*Object, error)
}

// Object is an opened stored file. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// New builds the backend selected by cfg.UploadBackend.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.UploadBackend {
	case "local":
		return NewLocalStorage(cfg.UploadDir)
	case "s3":
		return NewS3Storage(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.UploadBackend)
	}
}

func validName(name string) error {
	if name == "" || SecureFilename(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
