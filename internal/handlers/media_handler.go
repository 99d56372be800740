package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/nyumba-homes/marketplace/internal/errors"
	"github.com/nyumba-homes/marketplace/internal/middleware"
	"github.com/nyumba-homes/marketplace/internal/services"
)

// maxUploadBody bounds the whole multipart body: the image plus form overhead.
const maxUploadBody = services.MaxImageSize + 1<<20

// MediaHandler handles image upload, deletion and presigning.
type MediaHandler struct {
	service services.MediaService
}

// NewMediaHandler creates a new MediaHandler instance.
func NewMediaHandler(service services.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	URL string `json:"url"`
}

// DeleteImageRequest is the body of POST /api/delete-image.
type DeleteImageRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

// DeleteImageResponse is returned by POST /api/delete-image.
type DeleteImageResponse struct {
	Path    string `json:"path"`
	Success bool   `json:"success"`
}

// PresignRequest holds the query parameters of GET /api/images/presign.
type PresignRequest struct {
	Path string `form:"path" binding:"required"`
	TTL  string `form:"ttl"`
}

// PresignResponse is returned by GET /api/images/presign.
type PresignResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// Upload handles POST /api/upload.
// The multipart form carries the image as "file" and its object key as "path".
func (h *MediaHandler) Upload(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.BadRequest(c, services.ErrFileTooLarge.Error(), nil)
			return
		}
		apierrors.BadRequest(c, "No file provided", nil)
		return
	}
	path := strings.TrimSpace(c.PostForm("path"))
	if path == "" {
		apierrors.BadRequest(c, "No path provided", nil)
		return
	}
	if header.Size > services.MaxImageSize {
		apierrors.BadRequest(c, services.ErrFileTooLarge.Error(), nil)
		return
	}

	file, err := header.Open()
	if err != nil {
		apierrors.BadRequest(c, "Unreadable file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, services.MaxImageSize+1))
	if err != nil {
		apierrors.BadRequest(c, "Unreadable file", nil)
		return
	}

	url, err := h.service.Upload(c.Request.Context(), profile, services.UploadInput{
		Path:        path,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		respondError(c, err, "Failed to upload image")
		return
	}

	c.JSON(http.StatusOK, UploadResponse{URL: url})
}

// DeleteImage handles POST /api/delete-image.
func (h *MediaHandler) DeleteImage(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var req DeleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err, "Invalid request body")
		return
	}

	path, err := h.service.Delete(c.Request.Context(), profile, req.ImageURL)
	if err != nil {
		respondError(c, err, "Failed to delete image")
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Image delete request completed", map[string]interface{}{"path": path})
	}
	c.JSON(http.StatusOK, DeleteImageResponse{Success: true, Path: path})
}

// Presign handles GET /api/images/presign.
func (h *MediaHandler) Presign(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var req PresignRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BindError(c, err, "Invalid query parameters")
		return
	}
	ttl := services.DefaultPresignTTL
	if req.TTL != "" {
		parsed, err := time.ParseDuration(req.TTL)
		if err != nil {
			apierrors.BadRequest(c, "Invalid ttl", map[string]interface{}{"ttl": req.TTL})
			return
		}
		ttl = parsed
	}

	url, err := h.service.Presign(c.Request.Context(), profile, req.Path, ttl)
	if err != nil {
		respondError(c, err, "Failed to presign image")
		return
	}

	c.JSON(http.StatusOK, PresignResponse{URL: url, ExpiresIn: int(ttl.Seconds())})
}
