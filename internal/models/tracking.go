package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyView is an append-only view event, anonymous or identified.
type PropertyView struct {
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	ViewerID        *uuid.UUID  `db:"viewer_id" json:"viewer_id,omitempty"`
	SessionID       *uuid.UUID  `db:"session_id" json:"session_id,omitempty"`
	ViewerLocation  *string     `db:"viewer_location" json:"viewer_location,omitempty"`
	ViewerCountry   *string     `db:"viewer_country" json:"viewer_country,omitempty"`
	OriginType      *OriginType `db:"origin_type" json:"origin_type,omitempty"`
	DurationSeconds *int        `db:"duration_seconds" json:"duration_seconds,omitempty"`
	DeviceType      string      `db:"device_type" json:"device_type"`
	ID              uuid.UUID   `db:"id" json:"id"`
	PropertyID      uuid.UUID   `db:"property_id" json:"property_id"`
	IsDetailView    bool        `db:"is_detail_view" json:"is_detail_view"`
}

// SearchQuery is an append-only captured search with post-hoc conversion flags.
type SearchQuery struct {
	CreatedAt         time.Time              `db:"created_at" json:"created_at"`
	SessionID         *uuid.UUID             `db:"session_id" json:"session_id,omitempty"`
	UserID            *uuid.UUID             `db:"user_id" json:"user_id,omitempty"`
	Params            map[string]interface{} `db:"params" json:"params"`
	QueryText         string                 `db:"query_text" json:"query_text"`
	ResultCount       int                    `db:"result_count" json:"result_count"`
	ID                uuid.UUID              `db:"id" json:"id"`
	ResultedInView    bool                   `db:"resulted_in_view" json:"resulted_in_view"`
	ResultedInInquiry bool                   `db:"resulted_in_inquiry" json:"resulted_in_inquiry"`
}

// SessionFunnel is the denormalized funnel counter object kept on a session.
type SessionFunnel struct {
	Searches    int `json:"searches"`
	Views       int `json:"views"`
	DetailViews int `json:"detail_views"`
	Inquiries   int `json:"inquiries"`
}

// UserSession is a browsing session envelope.
type UserSession struct {
	StartedAt       time.Time     `db:"started_at" json:"started_at"`
	EndedAt         *time.Time    `db:"ended_at" json:"ended_at,omitempty"`
	DurationSeconds *int          `db:"duration_seconds" json:"duration_seconds,omitempty"`
	UserID          *uuid.UUID    `db:"user_id" json:"user_id,omitempty"`
	ViewerLocation  *string       `db:"viewer_location" json:"viewer_location,omitempty"`
	Referrer        *string       `db:"referrer" json:"referrer,omitempty"`
	DeviceType      string        `db:"device_type" json:"device_type"`
	Funnel          SessionFunnel `db:"funnel" json:"funnel"`
	ID              uuid.UUID     `db:"id" json:"id"`
}

// TrafficSource records the first touch of a browsing session and its page-view count.
type TrafficSource struct {
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
	Campaign    *string   `db:"campaign" json:"campaign,omitempty"`
	Referrer    *string   `db:"referrer" json:"referrer,omitempty"`
	SessionID   string    `db:"session_id" json:"session_id"`
	Source      string    `db:"source" json:"source"`
	Medium      string    `db:"medium" json:"medium"`
	LandingPage string    `db:"landing_page" json:"landing_page"`
	DeviceType  string    `db:"device_type" json:"device_type"`
	Browser     string    `db:"browser" json:"browser"`
	OS          string    `db:"os" json:"os"`
	PageViews   int       `db:"page_views" json:"page_views"`
	ID          uuid.UUID `db:"id" json:"id"`
}
