package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/logger"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/repository"
	"github.com/nyumba-homes/marketplace/internal/storage"
)

// Upload limits.
const (
	MaxImageSize       = 10 << 20
	DefaultPresignTTL  = 15 * time.Minute
	propertyPathPrefix = "property-"
)

// AllowedImageTypes are the content types accepted for listing images.
var AllowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"}

var (
	ErrUnsupportedMedia = fmt.Errorf("%w: file type not allowed", ErrInvalidInput)
	ErrFileTooLarge     = fmt.Errorf("%w: file exceeds the 10MB limit", ErrInvalidInput)
)

// ObjectStore is the object storage the media service forwards to.
type ObjectStore interface {
	UploadFile(ctx context.Context, data []byte, path, contentType string) (string, error)
	DeleteFile(ctx context.Context, path string) error
	PresignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	ExtractPathFromURL(raw string) (string, bool)
}

// UploadInput is one image upload.
type UploadInput struct {
	Path        string
	ContentType string
	Data        []byte
}

// MediaService authorizes image operations and forwards them to storage.
type MediaService interface {
	// Upload stores an image and returns its public URL. The path and the
	// file are validated before the store is contacted.
	Upload(ctx context.Context, actor *models.Profile, in UploadInput) (string, error)

	// Delete removes the image behind imageURL and returns its object path.
	// Admins may delete any image; agents and owners only images under
	// property-{id}/ of a listing they manage.
	Delete(ctx context.Context, actor *models.Profile, imageURL string) (string, error)

	// Presign returns a time-limited download URL for path.
	Presign(ctx context.Context, actor *models.Profile, path string, ttl time.Duration) (string, error)
}

type mediaService struct {
	store      ObjectStore
	properties repository.PropertyRepository
	owners     ownership
	log        *logger.Logger
}

// NewMediaService creates a new instance of MediaService.
func NewMediaService(store ObjectStore, properties repository.PropertyRepository, agents repository.AgentRepository, log *logger.Logger) MediaService {
	return &mediaService{
		store:      store,
		properties: properties,
		owners:     ownership{agents: agents},
		log:        log.Component("media_service"),
	}
}

func requireLister(actor *models.Profile) error {
	if actor == nil || !actor.Role.CanList() {
		return fmt.Errorf("%w: agent, owner or admin role required", ErrForbidden)
	}
	return nil
}

// ValidateImage checks the declared type, the sniffed content and the size
// of an upload. It returns the content type to store the object with.
func ValidateImage(data []byte, declared string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if len(data) > MaxImageSize {
		return "", ErrFileTooLarge
	}

	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if !allowedImageType(declared) {
		return "", fmt.Errorf("%w: declared %q", ErrUnsupportedMedia, declared)
	}

	detected := mimetype.Detect(data)
	if !allowedImageType(detected.String()) {
		return "", fmt.Errorf("%w: content is %s", ErrUnsupportedMedia, detected.String())
	}
	return detected.String(), nil
}

func allowedImageType(contentType string) bool {
	for _, t := range AllowedImageTypes {
		if contentType == t {
			return true
		}
	}
	return false
}

func (s *mediaService) Upload(ctx context.Context, actor *models.Profile, in UploadInput) (string, error) {
	if err := requireLister(actor); err != nil {
		return "", err
	}
	if err := storage.ValidateObjectPath(in.Path); err != nil {
		s.log.Warn("Rejected upload path", map[string]interface{}{
			"path":       in.Path,
			"profile_id": actor.ID.String(),
		})
		return "", err
	}
	contentType, err := ValidateImage(in.Data, in.ContentType)
	if err != nil {
		return "", err
	}

	url, err := s.store.UploadFile(ctx, in.Data, in.Path, contentType)
	if err != nil {
		return "", err
	}

	s.log.Info("Image uploaded", map[string]interface{}{
		"path":       in.Path,
		"size":       len(in.Data),
		"profile_id": actor.ID.String(),
	})
	return url, nil
}

// propertyFromPath extracts the listing id from a property-{id}/... key.
func propertyFromPath(path string) (uuid.UUID, bool) {
	first, _, found := strings.Cut(path, "/")
	if !found || !strings.HasPrefix(first, propertyPathPrefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(first, propertyPathPrefix))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (s *mediaService) Delete(ctx context.Context, actor *models.Profile, imageURL string) (string, error) {
	if err := requireLister(actor); err != nil {
		return "", err
	}
	path, ok := s.store.ExtractPathFromURL(imageURL)
	if !ok {
		return "", fmt.Errorf("%w: not an image URL from this store", ErrInvalidInput)
	}
	if err := storage.ValidateObjectPath(path); err != nil {
		return "", err
	}

	if actor.Role != models.RoleAdmin {
		id, ok := propertyFromPath(path)
		if !ok {
			return "", fmt.Errorf("%w: image does not belong to a listing", ErrForbidden)
		}
		prop, err := s.properties.GetByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to load listing: %w", err)
		}
		manages, err := s.owners.canManage(ctx, actor, prop)
		if err != nil {
			return "", err
		}
		if !manages {
			s.log.Warn("Image delete denied", map[string]interface{}{
				"path":       path,
				"profile_id": actor.ID.String(),
			})
			return "", fmt.Errorf("%w: listing %s is not yours", ErrForbidden, id)
		}
	}

	if err := s.store.DeleteFile(ctx, path); err != nil {
		return "", err
	}
	s.log.Info("Image deleted", map[string]interface{}{
		"path":       path,
		"profile_id": actor.ID.String(),
	})
	return path, nil
}

func (s *mediaService) Presign(ctx context.Context, actor *models.Profile, path string, ttl time.Duration) (string, error) {
	if err := requireLister(actor); err != nil {
		return "", err
	}
	if ttl == 0 {
		ttl = DefaultPresignTTL
	}
	url, err := s.store.PresignedURL(ctx, path, ttl)
	if err != nil {
		if !errors.Is(err, storage.ErrInvalidPath) && !errors.Is(err, storage.ErrInvalidTTL) {
			s.log.Error("Failed to presign image", err, map[string]interface{}{"path": path})
		}
		return "", err
	}
	return url, nil
}
