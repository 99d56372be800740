package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/nyumba-homes/marketplace/internal/errors"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/services"
)

// AdminHandler handles the admin console: analytics reports, profile
// administration and listing removal.
type AdminHandler struct {
	dashboard services.DashboardService
	admin     services.AdminService
	listings  services.ListingService
}

// NewAdminHandler creates a new AdminHandler instance.
func NewAdminHandler(dashboard services.DashboardService, admin services.AdminService, listings services.ListingService) *AdminHandler {
	return &AdminHandler{dashboard: dashboard, admin: admin, listings: listings}
}

// ProfileUpdateRequest is the body of PATCH /api/admin/profiles/:id.
type ProfileUpdateRequest struct {
	Role       *string `json:"role" binding:"omitempty,oneof=buyer agent owner admin"`
	IsVerified *bool   `json:"is_verified"`
}

// ProfileListResponse wraps a list of profiles.
type ProfileListResponse struct {
	Profiles []models.Profile `json:"profiles"`
	Count    int              `json:"count"`
}

// ProfileResponse wraps one profile.
type ProfileResponse struct {
	Profile *models.Profile `json:"profile"`
}

// Overview handles GET /api/admin/overview.
func (h *AdminHandler) Overview(c *gin.Context) {
	o, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load overview", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Buyers handles GET /api/admin/analytics/buyers.
func (h *AdminHandler) Buyers(c *gin.Context) {
	r, err := h.dashboard.BuyerSegments(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load buyer analytics", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Search handles GET /api/admin/analytics/search.
func (h *AdminHandler) Search(c *gin.Context) {
	r, err := h.dashboard.SearchIntelligence(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load search analytics", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Traffic handles GET /api/admin/analytics/traffic.
func (h *AdminHandler) Traffic(c *gin.Context) {
	r, err := h.dashboard.Traffic(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load traffic analytics", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Market handles GET /api/admin/market-intelligence.
func (h *AdminHandler) Market(c *gin.Context) {
	r, err := h.dashboard.MarketIntelligence(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load market intelligence", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ListProfiles handles GET /api/admin/profiles.
func (h *AdminHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.admin.ListProfiles(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load profiles", err)
		return
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}
	c.JSON(http.StatusOK, ProfileListResponse{Profiles: profiles, Count: len(profiles)})
}

// UpdateProfile handles PATCH /api/admin/profiles/:id.
func (h *AdminHandler) UpdateProfile(c *gin.Context) {
	admin, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err, "Invalid request body")
		return
	}
	update := services.ProfileUpdate{IsVerified: req.IsVerified}
	if req.Role != nil {
		role := models.Role(*req.Role)
		update.Role = &role
	}

	p, err := h.admin.UpdateProfile(c.Request.Context(), admin, id, update)
	if err != nil {
		respondMutationError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{Profile: p})
}

// DeleteProperty handles DELETE /api/admin/properties/:id.
func (h *AdminHandler) DeleteProperty(c *gin.Context) {
	admin, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.listings.Delete(c.Request.Context(), admin, id); err != nil {
		respondMutationError(c, err, "Failed to delete property")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
