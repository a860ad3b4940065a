package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vbonduro/homeinv/internal/domain"
)

const fileScheme = "file://"

// ErrNotFound is returned when a reference does not resolve to a file.
var ErrNotFound = fmt.Errorf("photo %w", domain.ErrNotFound)

type LocalPhotoStore struct {
	basePath string
}

func NewLocalPhotoStore(basePath string) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base path: %w", err)
	}
	return &LocalPhotoStore{basePath: absBase}, nil
}

func (s *LocalPhotoStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	filePath := filepath.Join(s.basePath, uniqueName(name))

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return filePath, nil
}

// Get opens ref. Absolute paths and file:// URIs are read wherever they point
// because items may reference photos taken outside the store; relative keys
// must stay inside the store directory.
func (s *LocalPhotoStore) Get(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	filePath, err := s.resolve(ref)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return f, extToMimeType(filePath), nil
}

// Delete removes a photo owned by the store. References outside the store
// directory are rejected.
func (s *LocalPhotoStore) Delete(ctx context.Context, ref string) error {
	filePath, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if !s.within(filePath) {
		return fmt.Errorf("photo %q is not owned by this store", ref)
	}

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalPhotoStore) resolve(ref string) (string, error) {
	if ref == "" {
		return "", ErrNotFound
	}
	path := strings.TrimPrefix(ref, fileScheme)
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return s.safeJoin(path)
}

// safeJoin resolves storageKey relative to basePath and rejects directory traversal.
func (s *LocalPhotoStore) safeJoin(storageKey string) (string, error) {
	absPath, err := filepath.Abs(filepath.Join(s.basePath, storageKey))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	if !s.within(absPath) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}

func (s *LocalPhotoStore) within(absPath string) bool {
	return strings.HasPrefix(absPath, s.basePath+string(filepath.Separator))
}

// uniqueName keeps the stem and extension of name and adds a random suffix.
// Restoring the same archive twice never overwrites a photo.
func uniqueName(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "photo"
	}
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s_%s%s", stem, uuid.NewString(), ext)
}

func extToMimeType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
