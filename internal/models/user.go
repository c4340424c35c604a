package models

import (
	"strings"
	"time"

	"github.com/example/greenchain/internal/utils"
)

// FacilityDetails describes a producer's hydrogen facility.
type FacilityDetails struct {
	FacilityName        string  `json:"facility_name"`
	Location            string  `json:"location"`
	Capacity            float64 `json:"capacity"`
	Technology          string  `json:"technology"`
	CertificationStatus string  `json:"certification_status"`
}

// CertificationBody describes a verifier's accreditation.
type CertificationBody struct {
	BodyName            string     `json:"body_name"`
	AccreditationNumber string     `json:"accreditation_number"`
	Scope               string     `json:"scope"`
	ExpiryDate          *time.Time `json:"expiry_date,omitempty"`
}

// User represents a platform account. The password hash and reset-token
// fields never leave the server; use PublicProfile for client payloads.
type User struct {
	BaseModel
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `gorm:"type:varchar(20);index" json:"role"`
	CompanyName  string `gorm:"index" json:"company_name"`

	// Role-conditional profile. Only the section matching Role is
	// meaningful; PublicProfile exposes just that one.
	FacilityDetails   FacilityDetails   `gorm:"embedded;embeddedPrefix:facility_" json:"-"`
	CertificationBody CertificationBody `gorm:"embedded;embeddedPrefix:certification_" json:"-"`
	IndustryType      string            `json:"-"`

	IsEmailVerified bool `json:"is_email_verified"`
	IsActive        bool `gorm:"default:true" json:"is_active"`

	ResetToken       *string    `gorm:"index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	LastLogin *time.Time `json:"last_login,omitempty"`
}

// NewUserParams carries the signup fields needed to construct a User.
type NewUserParams struct {
	Email             string
	Password          string
	Role              Role
	CompanyName       string
	FacilityDetails   FacilityDetails
	CertificationBody CertificationBody
	IndustryType      string
}

// NewUser builds an unverified, active account. The password is hashed here,
// before the record ever reaches the store; no other code path hashes.
func NewUser(p NewUserParams) (*User, error) {
	hash, err := utils.HashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:           NormalizeEmail(p.Email),
		PasswordHash:    hash,
		Role:            p.Role,
		CompanyName:     strings.TrimSpace(p.CompanyName),
		IsEmailVerified: false,
		IsActive:        true,
	}

	switch p.Role {
	case RoleProducer:
		user.FacilityDetails = p.FacilityDetails
		if user.FacilityDetails.CertificationStatus == "" {
			user.FacilityDetails.CertificationStatus = "pending"
		}
	case RoleVerifier:
		user.CertificationBody = p.CertificationBody
		if user.CertificationBody.ExpiryDate == nil {
			expiry := time.Now().AddDate(1, 0, 0)
			user.CertificationBody.ExpiryDate = &expiry
		}
	case RoleBuyer:
		user.IndustryType = p.IndustryType
	}

	return user, nil
}

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PublicProfile returns the client-safe view of the account: credential and
// reset fields stripped, role-conditional profile limited to the matching
// section.
func (u *User) PublicProfile() map[string]interface{} {
	profile := map[string]interface{}{
		"id":                u.ID,
		"email":             u.Email,
		"role":              u.Role,
		"company_name":      u.CompanyName,
		"is_email_verified": u.IsEmailVerified,
		"is_active":         u.IsActive,
		"created_at":        u.CreatedAt,
		"updated_at":        u.UpdatedAt,
	}

	if u.LastLogin != nil {
		profile["last_login"] = u.LastLogin
	}

	switch u.Role {
	case RoleProducer:
		profile["facility_details"] = u.FacilityDetails
	case RoleVerifier:
		profile["certification_body"] = u.CertificationBody
	case RoleBuyer:
		profile["industry_type"] = u.IndustryType
	}

	return profile
}
