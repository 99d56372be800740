package models

import (
	"time"

	"github.com/google/uuid"
)

// OriginType separates diaspora buyers from local ones.
type OriginType string

const (
	OriginDiaspora OriginType = "diaspora"
	OriginLocal    OriginType = "local"
)

// InquiryStatus is the lifecycle of a buyer inquiry:
// new -> contacted -> viewing_scheduled -> negotiating -> closed | lost.
type InquiryStatus string

const (
	InquiryNew              InquiryStatus = "new"
	InquiryContacted        InquiryStatus = "contacted"
	InquiryViewingScheduled InquiryStatus = "viewing_scheduled"
	InquiryNegotiating      InquiryStatus = "negotiating"
	InquiryClosed           InquiryStatus = "closed"
	InquiryLost             InquiryStatus = "lost"
)

var inquiryOrder = map[InquiryStatus]int{
	InquiryNew:              0,
	InquiryContacted:        1,
	InquiryViewingScheduled: 2,
	InquiryNegotiating:      3,
	InquiryClosed:           4,
}

// Valid reports whether s is a known inquiry status.
func (s InquiryStatus) Valid() bool {
	_, ok := inquiryOrder[s]
	return ok || s == InquiryLost
}

// Terminal reports whether no further transition is possible.
func (s InquiryStatus) Terminal() bool {
	return s == InquiryClosed || s == InquiryLost
}

// CanTransitionTo reports whether an inquiry may move from s to next.
// Progress is forward-only along the pipeline; stages may be skipped and
// any open inquiry may be marked lost.
func (s InquiryStatus) CanTransitionTo(next InquiryStatus) bool {
	if s.Terminal() || !next.Valid() || s == next {
		return false
	}
	if next == InquiryLost {
		return true
	}
	return inquiryOrder[next] > inquiryOrder[s]
}

// Inquiry is a buyer's structured contact request for one property.
type Inquiry struct {
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
	BuyerPhone    *string       `db:"buyer_phone" json:"buyer_phone,omitempty"`
	BuyerLocation *string       `db:"buyer_location" json:"buyer_location,omitempty"`
	BuyerCountry  *string       `db:"buyer_country" json:"buyer_country,omitempty"`
	OriginType    *OriginType   `db:"origin_type" json:"origin_type,omitempty"`
	Budget        *float64      `db:"budget" json:"budget,omitempty"`
	BuyerName     string        `db:"buyer_name" json:"buyer_name"`
	BuyerEmail    string        `db:"buyer_email" json:"buyer_email"`
	Intent        string        `db:"intent" json:"intent"`
	Message       string        `db:"message" json:"message"`
	Status        InquiryStatus `db:"status" json:"status"`
	ID            uuid.UUID     `db:"id" json:"id"`
	PropertyID    uuid.UUID     `db:"property_id" json:"property_id"`
	BuyerID       uuid.UUID     `db:"buyer_id" json:"buyer_id"`
}
