// Package storage wraps the S3-compatible object store that holds listing
// images. Every operation is a single request with no retry.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nyumba-homes/marketplace/internal/config"
)

// MaxPresignTTL is the longest lifetime S3 accepts for a presigned URL.
const MaxPresignTTL = 7 * 24 * time.Hour

var (
	// ErrNotConfigured is returned when endpoint, credentials or bucket are missing.
	ErrNotConfigured = errors.New("object storage is not configured")
	// ErrOperationFailed wraps any failure reported by the object store.
	ErrOperationFailed = errors.New("object storage operation failed")
	// ErrInvalidPath is returned for empty or traversing object keys.
	ErrInvalidPath = errors.New("invalid object path")
	// ErrInvalidTTL is returned for presign lifetimes S3 would refuse.
	ErrInvalidTTL = errors.New("invalid presign ttl")
)

// Store uploads, deletes and signs listing images.
type Store struct {
	client   *minio.Client
	bucket   string
	baseURL  string
	cdnURL   string
	public   bool
	disabled bool
}

// New builds a Store from cfg. A Store built from incomplete configuration is
// still returned; its operations fail with ErrNotConfigured.
func New(cfg config.StorageConfig) (*Store, error) {
	if !cfg.Configured() {
		return &Store{disabled: true, bucket: cfg.Bucket, cdnURL: cfg.CDNURL}, nil
	}

	host, secure, err := parseEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       secure,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	scheme := "http"
	if secure {
		scheme = "https"
	}

	return &Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: fmt.Sprintf("%s://%s/%s", scheme, host, cfg.Bucket),
		cdnURL:  strings.TrimRight(cfg.CDNURL, "/"),
		public:  cfg.PublicRead,
	}, nil
}

// parseEndpoint accepts either a bare host[:port] or a URL and returns the
// host and whether TLS should be used.
func parseEndpoint(endpoint string, useSSL bool) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimRight(endpoint, "/"), useSSL, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "", false, fmt.Errorf("invalid storage endpoint %q", endpoint)
	}
	return u.Host, u.Scheme == "https", nil
}

// Configured reports whether the store can serve requests.
func (s *Store) Configured() bool {
	return !s.disabled
}

// ValidateObjectPath rejects empty keys, keys with a leading slash and keys
// containing a ".." segment.
func ValidateObjectPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidPath)
	}
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, `\`) {
		return fmt.Errorf("%w: path must be relative", ErrInvalidPath)
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("%w: path must not contain '..'", ErrInvalidPath)
	}
	return nil
}

// PublicURL returns the URL an uploaded object is served from, preferring the
// CDN when one is configured.
func (s *Store) PublicURL(path string) string {
	if s.cdnURL != "" {
		return s.cdnURL + "/" + path
	}
	return s.baseURL + "/" + path
}

// ExtractPathFromURL recovers the object key from a URL previously returned by
// PublicURL or a path-style store URL. It reports false when the URL does not
// point into this bucket.
func (s *Store) ExtractPathFromURL(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if s.cdnURL != "" && strings.HasPrefix(raw, s.cdnURL+"/") {
		return cleanKey(strings.TrimPrefix(raw, s.cdnURL+"/"))
	}
	if s.baseURL != "" && strings.HasPrefix(raw, s.baseURL+"/") {
		return cleanKey(strings.TrimPrefix(raw, s.baseURL+"/"))
	}

	u, err := url.Parse(raw)
	if err != nil || s.bucket == "" {
		return "", false
	}
	marker := "/" + s.bucket + "/"
	idx := strings.Index(u.Path, marker)
	if idx < 0 {
		return "", false
	}
	return cleanKey(u.Path[idx+len(marker):])
}

func cleanKey(key string) (string, bool) {
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	if key == "" {
		return "", false
	}
	return key, true
}

// UploadFile stores data under path and returns its public URL.
func (s *Store) UploadFile(ctx context.Context, data []byte, path, contentType string) (string, error) {
	if s.disabled {
		return "", ErrNotConfigured
	}
	if err := ValidateObjectPath(path); err != nil {
		return "", err
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	if s.public {
		opts.UserMetadata = map[string]string{"x-amz-acl": "public-read"}
	}

	if _, err := s.client.PutObject(ctx, s.bucket, path, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return "", fmt.Errorf("%w: upload %s: %w", ErrOperationFailed, path, err)
	}
	return s.PublicURL(path), nil
}

// DeleteFile removes the object stored under path.
func (s *Store) DeleteFile(ctx context.Context, path string) error {
	if s.disabled {
		return ErrNotConfigured
	}
	if err := ValidateObjectPath(path); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrOperationFailed, path, err)
	}
	return nil
}

// PresignedURL returns a time-limited GET URL for path.
func (s *Store) PresignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if s.disabled {
		return "", ErrNotConfigured
	}
	if err := ValidateObjectPath(path); err != nil {
		return "", err
	}
	if ttl <= 0 || ttl > MaxPresignTTL {
		return "", fmt.Errorf("%w: must be between 1s and %s", ErrInvalidTTL, MaxPresignTTL)
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("%w: presign %s: %w", ErrOperationFailed, path, err)
	}
	return u.String(), nil
}
