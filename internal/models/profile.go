package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the marketplace role stored on a profile.
type Role string

const (
	RoleBuyer Role = "buyer"
	RoleAgent Role = "agent"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleAgent, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// CanList reports whether the role may publish and manage listings.
func (r Role) CanList() bool {
	return r == RoleAgent || r == RoleOwner || r == RoleAdmin
}

// Profile is the identity record created at signup.
type Profile struct {
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Location   *string   `db:"location" json:"location,omitempty"`
	Country    *string   `db:"country" json:"country,omitempty"`
	Email      string    `db:"email" json:"email"`
	FullName   string    `db:"full_name" json:"full_name"`
	Role       Role      `db:"role" json:"role"`
	ID         uuid.UUID `db:"id" json:"id"`
	IsDiaspora bool      `db:"is_diaspora" json:"is_diaspora"`
	IsVerified bool      `db:"is_verified" json:"is_verified"`
}

// Agent extends a profile of role agent with brokerage metadata.
type Agent struct {
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	LicenseNumber      *string   `db:"license_number" json:"license_number,omitempty"`
	CompanyName        string    `db:"company_name" json:"company_name"`
	VerificationStatus string    `db:"verification_status" json:"verification_status"`
	Districts          []string  `db:"districts" json:"districts"`
	Rating             float64   `db:"rating" json:"rating"`
	TotalListings      int       `db:"total_listings" json:"total_listings"`
	TotalSales         int       `db:"total_sales" json:"total_sales"`
	ID                 uuid.UUID `db:"id" json:"id"`
	ProfileID          uuid.UUID `db:"profile_id" json:"profile_id"`
}
