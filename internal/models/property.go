package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyType classifies a listing.
type PropertyType string

const (
	PropertyTypeLand       PropertyType = "land"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeCommercial PropertyType = "commercial"
)

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeLand, PropertyTypeHouse, PropertyTypeApartment, PropertyTypeCommercial:
		return true
	}
	return false
}

// PropertyStatus drives listing visibility. Only available listings appear
// in the public marketplace.
type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusPending   PropertyStatus = "pending"
	StatusSold      PropertyStatus = "sold"
	StatusWithdrawn PropertyStatus = "withdrawn"
)

// Valid reports whether s is a known listing status.
func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusPending, StatusSold, StatusWithdrawn:
		return true
	}
	return false
}

// Property is a listing. Exactly one of AgentID and OwnerID is set.
type Property struct {
	ListedAt     time.Time      `db:"listed_at" json:"listed_at"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
	SoldAt       *time.Time     `db:"sold_at" json:"sold_at,omitempty"`
	PlotSizeSqm  *float64       `db:"plot_size_sqm" json:"plot_size_sqm,omitempty"`
	Bedrooms     *int           `db:"bedrooms" json:"bedrooms,omitempty"`
	Bathrooms    *int           `db:"bathrooms" json:"bathrooms,omitempty"`
	SalePrice    *float64       `db:"sale_price" json:"sale_price,omitempty"`
	BuyerType    *OriginType    `db:"buyer_type" json:"buyer_type,omitempty"`
	AgentID      *uuid.UUID     `db:"agent_id" json:"agent_id,omitempty"`
	OwnerID      *uuid.UUID     `db:"owner_id" json:"owner_id,omitempty"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	PropertyType PropertyType   `db:"property_type" json:"property_type"`
	District     string         `db:"district" json:"district"`
	Area         string         `db:"area" json:"area"`
	Currency     string         `db:"currency" json:"currency"`
	Status       PropertyStatus `db:"status" json:"status"`
	Images       []string       `db:"images" json:"images"`
	Price        float64        `db:"price" json:"price"`
	ViewCount    int            `db:"view_count" json:"view_count"`
	InquiryCount int            `db:"inquiry_count" json:"inquiry_count"`
	ID           uuid.UUID      `db:"id" json:"id"`
	HasTitleDeed bool           `db:"has_title_deed" json:"has_title_deed"`
	IsSurveyed   bool           `db:"is_surveyed" json:"is_surveyed"`
	HasUtilities bool           `db:"has_utilities" json:"has_utilities"`
}

// PropertyFilter narrows the public marketplace listing.
type PropertyFilter struct {
	District     string
	PropertyType PropertyType
	MinPrice     *float64
	MaxPrice     *float64
	MinPlotSize  *float64
	MaxPlotSize  *float64
	Search       string
}

// ListingOwner identifies who a listing belongs to: an agent record or an
// owner profile, never both.
type ListingOwner struct {
	AgentID *uuid.UUID
	OwnerID *uuid.UUID
}

// Owns reports whether the listing belongs to o.
func (o ListingOwner) Owns(p *Property) bool {
	if p == nil {
		return false
	}
	if o.AgentID != nil && p.AgentID != nil && *o.AgentID == *p.AgentID {
		return true
	}
	if o.OwnerID != nil && p.OwnerID != nil && *o.OwnerID == *p.OwnerID {
		return true
	}
	return false
}
