package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"wardrobe/internal/config"
	"wardrobe/internal/domain/wardrobe"
)

var (
	// ErrObjectNotFound is returned when a stored photograph does not exist
	ErrObjectNotFound = errors.New("object not found")

	// ErrObjectTooLarge is returned when an upload exceeds MaxUploadSize
	ErrObjectTooLarge = errors.New("object exceeds maximum upload size")
)

// Service stores clothing photographs in a MinIO bucket
type Service struct {
	client       *minio.Client
	bucketName   string
	maxSize      int64
	allowedTypes map[string]bool
}

var _ wardrobe.StorageService = (*Service)(nil)

// NewService connects to MinIO and makes sure the bucket exists
func NewService(ctx context.Context, cfg *config.StorageConfig) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("storage config cannot be nil")
	}

	client, err := newMinIOClient(*cfg)
	if err != nil {
		return nil, err
	}

	if err := ensureBucket(ctx, client, cfg.BucketName, cfg.Region); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return newService(client, cfg), nil
}

func newService(client *minio.Client, cfg *config.StorageConfig) *Service {
	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(t)] = true
	}

	return &Service{
		client:       client,
		bucketName:   cfg.BucketName,
		maxSize:      cfg.MaxUploadSize,
		allowedTypes: allowed,
	}
}

// Store uploads data under filename and returns the object key
func (s *Service) Store(ctx context.Context, filename, contentType string, data io.Reader, size int64) (string, error) {
	if data == nil {
		return "", errors.New("data cannot be nil")
	}
	if err := validateObjectName(filename); err != nil {
		return "", err
	}
	if !s.isAllowedType(contentType) {
		return "", fmt.Errorf("%w: %s", wardrobe.ErrUnsupportedImage, contentType)
	}
	if s.maxSize > 0 && size > s.maxSize {
		return "", fmt.Errorf("%w: %d bytes", ErrObjectTooLarge, size)
	}

	info, err := s.client.PutObject(ctx, s.bucketName, filename, data, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"upload-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	if info.Size == 0 {
		_ = s.client.RemoveObject(ctx, s.bucketName, filename, minio.RemoveObjectOptions{}) //nolint:errcheck // best effort cleanup
		return "", fmt.Errorf("uploaded object %s has zero size", filename)
	}

	return filename, nil
}

// Retrieve opens a stored object; ErrObjectNotFound when it is missing
func (s *Service) Retrieve(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, errors.New("path cannot be empty")
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	// GetObject is lazy; Stat surfaces a missing key
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close() //nolint:errcheck // already failing
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	return obj, nil
}

// Delete removes a stored object. Removing a missing key is not an error.
func (s *Service) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("path cannot be empty")
	}

	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// Exists checks if a stored object exists
func (s *Service) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("path cannot be empty")
	}

	_, err := s.client.StatObject(ctx, s.bucketName, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}

	return true, nil
}

// Health checks that the bucket is reachable
func (s *Service) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("storage health check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}

func (s *Service) isAllowedType(contentType string) bool {
	if len(s.allowedTypes) == 0 {
		return strings.HasPrefix(contentType, "image/")
	}
	return s.allowedTypes[strings.ToLower(contentType)]
}

// validateObjectName rejects keys that could escape the flat bucket layout
func validateObjectName(name string) error {
	switch {
	case name == "":
		return errors.New("filename cannot be empty")
	case len(name) > wardrobe.MaxFilenameLen:
		return errors.New("filename too long")
	case strings.Contains(name, "\x00"):
		return errors.New("null bytes not allowed in filename")
	case strings.ContainsAny(name, `/\`):
		return errors.New("directories not allowed in filename")
	case name == "." || name == "..":
		return errors.New("path traversal attempt detected")
	case strings.HasPrefix(path.Base(name), "."):
		return errors.New("hidden files not allowed")
	}
	return nil
}
