package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/logger"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	jpegBytes = append([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 32)...)
	gifBytes  = append([]byte("GIF89a"), make([]byte, 32)...)
	webpBytes = append([]byte("RIFF\x24\x00\x00\x00WEBPVP8 "), make([]byte, 32)...)
)

func newMediaFixture() (MediaService, *MockObjectStore, *MockPropertyRepository, *MockAgentRepository) {
	store := new(MockObjectStore)
	properties := new(MockPropertyRepository)
	agents := new(MockAgentRepository)
	return NewMediaService(store, properties, agents, logger.New("test")), store, properties, agents
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		declared string
		want     string
		wantErr  error
	}{
		{"png", pngBytes, "image/png", "image/png", nil},
		{"jpeg", jpegBytes, "image/jpeg", "image/jpeg", nil},
		{"gif", gifBytes, "image/gif", "image/gif", nil},
		{"webp", webpBytes, "image/webp", "image/webp", nil},
		{"declared type with parameters", pngBytes, " IMAGE/PNG; charset=binary", "image/png", nil},
		{"sniffed type wins over declared", pngBytes, "image/jpeg", "image/png", nil},
		{"declared pdf", pngBytes, "application/pdf", "", ErrUnsupportedMedia},
		{"script disguised as png", []byte("#!/bin/sh\nrm -rf /\n"), "image/png", "", ErrUnsupportedMedia},
		{"empty", nil, "image/png", "", ErrInvalidInput},
		{"too large", append(append([]byte{}, pngBytes...), make([]byte, MaxImageSize)...), "image/png", "", ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateImage(tt.data, tt.declared)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMediaUpload(t *testing.T) {
	ctx := context.Background()
	agent := &models.Profile{ID: uuid.New(), Role: models.RoleAgent}

	t.Run("stores the sniffed content type", func(t *testing.T) {
		// Arrange
		svc, store, _, _ := newMediaFixture()
		path := "property-" + uuid.NewString() + "/front.png"
		store.On("UploadFile", ctx, pngBytes, path, "image/png").
			Return("https://cdn.example.com/property-images/"+path, nil)

		// Act
		url, err := svc.Upload(ctx, agent, UploadInput{Path: path, ContentType: "image/png", Data: pngBytes})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, url, path)
		store.AssertExpectations(t)
	})

	traversal := []string{"../etc/passwd", "property-1/../../secrets", "/etc/passwd", ""}
	for _, path := range traversal {
		t.Run("rejects path "+path, func(t *testing.T) {
			svc, store, _, _ := newMediaFixture()

			_, err := svc.Upload(ctx, agent, UploadInput{Path: path, ContentType: "image/png", Data: pngBytes})

			assert.ErrorIs(t, err, storage.ErrInvalidPath)
			store.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("rejects disguised content", func(t *testing.T) {
		svc, store, _, _ := newMediaFixture()

		_, err := svc.Upload(ctx, agent, UploadInput{Path: "property-x/a.png", ContentType: "image/png", Data: []byte("<html></html>")})

		assert.ErrorIs(t, err, ErrUnsupportedMedia)
		store.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("buyers cannot upload", func(t *testing.T) {
		svc, store, _, _ := newMediaFixture()

		_, err := svc.Upload(ctx, &models.Profile{ID: uuid.New(), Role: models.RoleBuyer}, UploadInput{Path: "a.png", ContentType: "image/png", Data: pngBytes})

		assert.ErrorIs(t, err, ErrForbidden)
		store.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		svc, store, _, _ := newMediaFixture()
		store.On("UploadFile", ctx, mock.Anything, "a.png", "image/png").Return("", storage.ErrNotConfigured)

		_, err := svc.Upload(ctx, agent, UploadInput{Path: "a.png", ContentType: "image/png", Data: pngBytes})

		assert.ErrorIs(t, err, storage.ErrNotConfigured)
	})
}

func TestMediaDelete(t *testing.T) {
	ctx := context.Background()
	owner := &models.Profile{ID: uuid.New(), Role: models.RoleOwner}
	prop := &models.Property{ID: uuid.New(), OwnerID: &owner.ID}
	ownPath := "property-" + prop.ID.String() + "/front.png"
	ownURL := "https://cdn.example.com/property-images/" + ownPath

	t.Run("owner deletes own listing image", func(t *testing.T) {
		svc, store, properties, _ := newMediaFixture()
		store.On("ExtractPathFromURL", ownURL).Return(ownPath, true)
		properties.On("GetByID", ctx, prop.ID).Return(prop, nil)
		store.On("DeleteFile", ctx, ownPath).Return(nil)

		path, err := svc.Delete(ctx, owner, ownURL)

		require.NoError(t, err)
		assert.Equal(t, ownPath, path)
		store.AssertExpectations(t)
	})

	t.Run("another owner is forbidden", func(t *testing.T) {
		svc, store, properties, _ := newMediaFixture()
		store.On("ExtractPathFromURL", ownURL).Return(ownPath, true)
		properties.On("GetByID", ctx, prop.ID).Return(prop, nil)

		_, err := svc.Delete(ctx, &models.Profile{ID: uuid.New(), Role: models.RoleOwner}, ownURL)

		assert.ErrorIs(t, err, ErrForbidden)
		store.AssertNotCalled(t, "DeleteFile", mock.Anything, mock.Anything)
	})

	t.Run("non-listing path needs admin", func(t *testing.T) {
		svc, store, _, _ := newMediaFixture()
		store.On("ExtractPathFromURL", "https://cdn.example.com/property-images/banner.png").Return("banner.png", true)

		_, err := svc.Delete(ctx, owner, "https://cdn.example.com/property-images/banner.png")

		assert.ErrorIs(t, err, ErrForbidden)
		store.AssertNotCalled(t, "DeleteFile", mock.Anything, mock.Anything)
	})

	t.Run("admin deletes anything", func(t *testing.T) {
		svc, store, properties, _ := newMediaFixture()
		store.On("ExtractPathFromURL", "https://cdn.example.com/property-images/banner.png").Return("banner.png", true)
		store.On("DeleteFile", ctx, "banner.png").Return(nil)

		_, err := svc.Delete(ctx, &models.Profile{ID: uuid.New(), Role: models.RoleAdmin}, "https://cdn.example.com/property-images/banner.png")

		require.NoError(t, err)
		properties.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("foreign URL", func(t *testing.T) {
		svc, store, _, _ := newMediaFixture()
		store.On("ExtractPathFromURL", "https://evil.example.org/x.png").Return("", false)

		_, err := svc.Delete(ctx, owner, "https://evil.example.org/x.png")

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("store failure", func(t *testing.T) {
		svc, store, _, _ := newMediaFixture()
		failure := errors.Join(storage.ErrOperationFailed, errors.New("AccessDenied"))
		store.On("ExtractPathFromURL", "u").Return("banner.png", true)
		store.On("DeleteFile", ctx, "banner.png").Return(failure)

		_, err := svc.Delete(ctx, &models.Profile{ID: uuid.New(), Role: models.RoleAdmin}, "u")

		assert.ErrorIs(t, err, storage.ErrOperationFailed)
	})
}

func TestMediaPresign(t *testing.T) {
	ctx := context.Background()
	agent := &models.Profile{ID: uuid.New(), Role: models.RoleAgent}

	t.Run("default ttl", func(t *testing.T) {
		svc, store, _, _ := newMediaFixture()
		store.On("PresignedURL", ctx, "a.png", DefaultPresignTTL).Return("https://signed", nil)

		url, err := svc.Presign(ctx, agent, "a.png", 0)

		require.NoError(t, err)
		assert.Equal(t, "https://signed", url)
	})

	t.Run("invalid ttl passes through", func(t *testing.T) {
		svc, store, _, _ := newMediaFixture()
		store.On("PresignedURL", ctx, "a.png", 30*24*time.Hour).Return("", storage.ErrInvalidTTL)

		_, err := svc.Presign(ctx, agent, "a.png", 30*24*time.Hour)

		assert.ErrorIs(t, err, storage.ErrInvalidTTL)
	})

	t.Run("anonymous", func(t *testing.T) {
		svc, _, _, _ := newMediaFixture()

		_, err := svc.Presign(ctx, nil, "a.png", 0)

		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestPropertyFromPath(t *testing.T) {
	id := uuid.New()

	got, ok := propertyFromPath("property-" + id.String() + "/a/b.png")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = propertyFromPath("property-nope/a.png")
	assert.False(t, ok)
	_, ok = propertyFromPath("property-" + id.String())
	assert.False(t, ok)
	_, ok = propertyFromPath("banners/a.png")
	assert.False(t, ok)
}
