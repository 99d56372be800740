package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/nyumba-homes/marketplace/internal/errors"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/services"
)

// DashboardHandler handles the agent and owner dashboard.
type DashboardHandler struct {
	listings  services.ListingService
	dashboard services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler instance.
func NewDashboardHandler(listings services.ListingService, dashboard services.DashboardService) *DashboardHandler {
	return &DashboardHandler{listings: listings, dashboard: dashboard}
}

// ListingRequest is the body of listing create and update.
type ListingRequest struct {
	PlotSizeSqm  *float64 `json:"plot_size_sqm" binding:"omitempty,gt=0"`
	Bedrooms     *int     `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms    *int     `json:"bathrooms" binding:"omitempty,gte=0"`
	Title        string   `json:"title" binding:"required,max=200"`
	Description  string   `json:"description" binding:"max=10000"`
	PropertyType string   `json:"property_type" binding:"required,oneof=land house apartment commercial"`
	District     string   `json:"district" binding:"required,max=100"`
	Area         string   `json:"area" binding:"max=100"`
	Currency     string   `json:"currency" binding:"omitempty,len=3"`
	Images       []string `json:"images" binding:"max=30,dive,url"`
	Price        float64  `json:"price" binding:"required,gt=0"`
	HasTitleDeed bool     `json:"has_title_deed"`
	IsSurveyed   bool     `json:"is_surveyed"`
	HasUtilities bool     `json:"has_utilities"`
}

func (r ListingRequest) input() services.ListingInput {
	return services.ListingInput{
		PlotSizeSqm:  r.PlotSizeSqm,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		Title:        r.Title,
		Description:  r.Description,
		PropertyType: models.PropertyType(r.PropertyType),
		District:     r.District,
		Area:         r.Area,
		Currency:     r.Currency,
		Images:       r.Images,
		Price:        r.Price,
		HasTitleDeed: r.HasTitleDeed,
		IsSurveyed:   r.IsSurveyed,
		HasUtilities: r.HasUtilities,
	}
}

// StatusRequest is the body of PATCH /api/dashboard/listings/:id/status.
type StatusRequest struct {
	SalePrice *float64 `json:"sale_price" binding:"omitempty,gt=0"`
	BuyerType *string  `json:"buyer_type" binding:"omitempty,oneof=diaspora local"`
	Status    string   `json:"status" binding:"required,oneof=available pending sold withdrawn"`
}

// InquiryStatusRequest is the body of PATCH /api/dashboard/inquiries/:id/status.
type InquiryStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new contacted viewing_scheduled negotiating closed lost"`
}

// InquiryListResponse wraps a list of inquiries.
type InquiryListResponse struct {
	Inquiries []models.Inquiry `json:"inquiries"`
	Count     int              `json:"count"`
}

// ListListings handles GET /api/dashboard/listings.
func (h *DashboardHandler) ListListings(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	listings, err := h.listings.MyListings(c.Request.Context(), profile)
	if err != nil {
		respondError(c, err, "Failed to load listings")
		return
	}
	if listings == nil {
		listings = []models.Property{}
	}

	c.JSON(http.StatusOK, PropertyListResponse{Properties: listings, Count: len(listings)})
}

// CreateListing handles POST /api/dashboard/listings.
func (h *DashboardHandler) CreateListing(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err, "Invalid request body")
		return
	}

	prop, err := h.listings.Create(c.Request.Context(), profile, req.input())
	if err != nil {
		respondMutationError(c, err, "Failed to create listing")
		return
	}

	c.JSON(http.StatusCreated, PropertyResponse{Property: prop})
}

// UpdateListing handles PUT /api/dashboard/listings/:id.
func (h *DashboardHandler) UpdateListing(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err, "Invalid request body")
		return
	}

	prop, err := h.listings.Update(c.Request.Context(), profile, id, req.input())
	if err != nil {
		respondMutationError(c, err, "Failed to update listing")
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: prop})
}

// ChangeStatus handles PATCH /api/dashboard/listings/:id/status.
func (h *DashboardHandler) ChangeStatus(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err, "Invalid request body")
		return
	}
	in := services.StatusInput{
		Status:    models.PropertyStatus(req.Status),
		SalePrice: req.SalePrice,
	}
	if req.BuyerType != nil {
		bt := models.OriginType(*req.BuyerType)
		in.BuyerType = &bt
	}

	prop, err := h.listings.ChangeStatus(c.Request.Context(), profile, id, in)
	if err != nil {
		respondMutationError(c, err, "Failed to change listing status")
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: prop})
}

// ListInquiries handles GET /api/dashboard/inquiries.
func (h *DashboardHandler) ListInquiries(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	inquiries, err := h.listings.MyInquiries(c.Request.Context(), profile)
	if err != nil {
		respondError(c, err, "Failed to load inquiries")
		return
	}
	if inquiries == nil {
		inquiries = []models.Inquiry{}
	}

	c.JSON(http.StatusOK, InquiryListResponse{Inquiries: inquiries, Count: len(inquiries)})
}

// UpdateInquiryStatus handles PATCH /api/dashboard/inquiries/:id/status.
func (h *DashboardHandler) UpdateInquiryStatus(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req InquiryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err, "Invalid request body")
		return
	}

	inq, err := h.listings.UpdateInquiryStatus(c.Request.Context(), profile, id, models.InquiryStatus(req.Status))
	if err != nil {
		respondMutationError(c, err, "Failed to update inquiry")
		return
	}

	c.JSON(http.StatusOK, InquiryResponse{Inquiry: inq})
}

// Stats handles GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	stats, err := h.dashboard.ListingStats(c.Request.Context(), profile)
	if err != nil {
		respondError(c, err, "Failed to load dashboard stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
