package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/nyumba-homes/marketplace/internal/errors"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/services"
)

// MarketplaceHandler handles the public listing and inquiry endpoints.
type MarketplaceHandler struct {
	service services.MarketplaceService
	states  StateStore
}

// NewMarketplaceHandler creates a new MarketplaceHandler instance.
func NewMarketplaceHandler(service services.MarketplaceService, states StateStore) *MarketplaceHandler {
	return &MarketplaceHandler{service: service, states: states}
}

// SearchRequest holds the query parameters of GET /api/properties.
type SearchRequest struct {
	MinPrice     *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice     *float64 `form:"max_price" binding:"omitempty,gte=0"`
	MinPlotSize  *float64 `form:"min_plot_size" binding:"omitempty,gte=0"`
	MaxPlotSize  *float64 `form:"max_plot_size" binding:"omitempty,gte=0"`
	District     string   `form:"district"`
	PropertyType string   `form:"property_type" binding:"omitempty,oneof=land house apartment commercial"`
	Query        string   `form:"q" binding:"max=200"`
}

// InquiryRequest is the buyer-detail form submitted before contact details
// are revealed.
type InquiryRequest struct {
	BuyerPhone    *string  `json:"buyer_phone"`
	BuyerLocation *string  `json:"buyer_location"`
	BuyerCountry  *string  `json:"buyer_country"`
	OriginType    *string  `json:"origin_type" binding:"omitempty,oneof=diaspora local"`
	Budget        *float64 `json:"budget" binding:"omitempty,gt=0"`
	BuyerName     string   `json:"buyer_name" binding:"max=200"`
	BuyerEmail    string   `json:"buyer_email" binding:"omitempty,email"`
	Intent        string   `json:"intent" binding:"required,max=100"`
	Message       string   `json:"message" binding:"max=5000"`
}

// PropertyListResponse wraps a list of listings.
type PropertyListResponse struct {
	Properties []models.Property `json:"properties"`
	Count      int               `json:"count"`
}

// PropertyResponse wraps one listing.
type PropertyResponse struct {
	Property *models.Property `json:"property"`
}

// ContactResponse wraps the revealed lister contact.
type ContactResponse struct {
	Contact *services.ListingContact `json:"contact"`
}

// InquiryResponse wraps one inquiry.
type InquiryResponse struct {
	Inquiry *models.Inquiry `json:"inquiry"`
}

// ListProperties handles GET /api/properties.
func (h *MarketplaceHandler) ListProperties(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BindError(c, err, "Invalid query parameters")
		return
	}
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		apierrors.BadRequest(c, "min_price must not exceed max_price", nil)
		return
	}

	filter := models.PropertyFilter{
		District:     strings.TrimSpace(req.District),
		PropertyType: models.PropertyType(req.PropertyType),
		MinPrice:     req.MinPrice,
		MaxPrice:     req.MaxPrice,
		MinPlotSize:  req.MinPlotSize,
		MaxPlotSize:  req.MaxPlotSize,
		Search:       strings.TrimSpace(req.Query),
	}
	listings, err := h.service.Search(c.Request.Context(), filter, visitor(c, h.states), optionalProfile(c))
	if err != nil {
		respondError(c, err, "Failed to search properties")
		return
	}
	if listings == nil {
		listings = []models.Property{}
	}

	c.JSON(http.StatusOK, PropertyListResponse{Properties: listings, Count: len(listings)})
}

// GetProperty handles GET /api/properties/:id.
func (h *MarketplaceHandler) GetProperty(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	prop, err := h.service.GetListing(c.Request.Context(), id, optionalProfile(c), visitor(c, h.states))
	if err != nil {
		respondError(c, err, "Failed to load property")
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: prop})
}

// Contact handles GET /api/properties/:id/contact.
func (h *MarketplaceHandler) Contact(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	contact, err := h.service.ContactDetails(c.Request.Context(), id, profile)
	if err != nil {
		respondError(c, err, "Failed to load contact details")
		return
	}

	c.JSON(http.StatusOK, ContactResponse{Contact: contact})
}

// SubmitInquiry handles POST /api/properties/:id/inquiries.
func (h *MarketplaceHandler) SubmitInquiry(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err, "Invalid request body")
		return
	}
	in := services.InquiryInput{
		BuyerPhone:    req.BuyerPhone,
		BuyerLocation: req.BuyerLocation,
		BuyerCountry:  req.BuyerCountry,
		Budget:        req.Budget,
		BuyerName:     req.BuyerName,
		BuyerEmail:    req.BuyerEmail,
		Intent:        req.Intent,
		Message:       req.Message,
	}
	if req.OriginType != nil {
		origin := models.OriginType(*req.OriginType)
		in.OriginType = &origin
	}

	inq, err := h.service.SubmitInquiry(c.Request.Context(), id, profile, in, visitor(c, h.states))
	if err != nil {
		respondMutationError(c, err, "Failed to submit inquiry")
		return
	}

	c.JSON(http.StatusCreated, InquiryResponse{Inquiry: inq})
}
