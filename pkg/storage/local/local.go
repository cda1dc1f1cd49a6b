package local

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rmartinelli/shopcart-backend/pkg/config"
)

// ErrUnsupportedExtension signals an upload whose extension is not allowed.
var ErrUnsupportedExtension = fmt.Errorf("unsupported file extension")

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// Store writes uploaded files to a directory on local disk and serves them
// back through a public base path.
type Store struct {
	dir        string
	publicBase string
	maxBytes   int64
}

// NewStore ensures the upload directory exists and returns a Store over it.
func NewStore(cfg config.UploadsConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("uploads directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	maxBytes := int64(cfg.MaxUploadMB) * 1024 * 1024
	if maxBytes <= 0 {
		maxBytes = 16 * 1024 * 1024
	}
	return &Store{
		dir:        cfg.Dir,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
		maxBytes:   maxBytes,
	}, nil
}

// MaxBytes returns the configured per-file upload limit.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Dir returns the directory files are written into.
func (s *Store) Dir() string {
	return s.dir
}

// Save streams the upload to disk under a random name that keeps the original
// extension, and returns the stored filename plus its public URL path.
func (s *Store) Save(original string, src io.Reader) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", "", ErrUnsupportedExtension
	}

	name := uuid.NewString() + ext
	dest := filepath.Join(s.dir, name)

	file, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("creating upload file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, io.LimitReader(src, s.maxBytes+1)); err != nil {
		os.Remove(dest)
		return "", "", fmt.Errorf("writing upload file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		os.Remove(dest)
		return "", "", fmt.Errorf("stat upload file: %w", err)
	}
	if info.Size() > s.maxBytes {
		os.Remove(dest)
		return "", "", fmt.Errorf("upload exceeds %d bytes", s.maxBytes)
	}

	return name, s.PublicURL(name), nil
}

// Remove deletes a stored file by name. Missing files are not an error.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing upload file: %w", err)
	}
	return nil
}

// PublicURL maps a stored filename to the path it is served from.
func (s *Store) PublicURL(name string) string {
	return path.Join(s.publicBase, name)
}

// AllowedExtension reports whether the filename carries an accepted extension.
func AllowedExtension(filename string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}
