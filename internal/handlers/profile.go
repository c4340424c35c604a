package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/greenchain/internal/middleware"
	"github.com/example/greenchain/internal/models"
	"github.com/example/greenchain/internal/repo"
)

// ProfileHandler manages the authenticated user's profile.
type ProfileHandler struct {
	users repo.UserStore
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(users repo.UserStore) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// GetProfile returns the authenticated user's public profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return Fail(c, fiber.StatusUnauthorized, "Authentication required.")
	}

	return Success(c, fiber.StatusOK, "", map[string]interface{}{
		"user": user.PublicProfile(),
	})
}

type updateProfileRequest struct {
	CompanyName       string                    `json:"companyName"`
	FacilityDetails   *models.FacilityDetails   `json:"facilityDetails"`
	CertificationBody *models.CertificationBody `json:"certificationBody"`
	IndustryType      string                    `json:"industryType"`
}

// UpdateProfile mutates the company name and the sub-object matching the
// caller's role. Submitting another role's section is silently ignored;
// the role itself is never writable here.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return Fail(c, fiber.StatusUnauthorized, "Authentication required.")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updates := map[string]interface{}{}

	if req.CompanyName != "" {
		if !validCompanyName(req.CompanyName) {
			return Fail(c, fiber.StatusBadRequest, "Validation failed",
				models.FieldError{Field: "companyName", Message: "Company name must be between 2 and 100 characters"})
		}
		updates["company_name"] = strings.TrimSpace(req.CompanyName)
	}

	switch user.Role {
	case models.RoleProducer:
		if req.FacilityDetails != nil {
			updates["facility_facility_name"] = req.FacilityDetails.FacilityName
			updates["facility_location"] = req.FacilityDetails.Location
			updates["facility_capacity"] = req.FacilityDetails.Capacity
			updates["facility_technology"] = req.FacilityDetails.Technology
		}
	case models.RoleVerifier:
		if req.CertificationBody != nil {
			updates["certification_body_name"] = req.CertificationBody.BodyName
			updates["certification_accreditation_number"] = req.CertificationBody.AccreditationNumber
			updates["certification_scope"] = req.CertificationBody.Scope
		}
	case models.RoleBuyer:
		if req.IndustryType != "" {
			if !models.ValidIndustryType(req.IndustryType) {
				return Fail(c, fiber.StatusBadRequest, "Validation failed",
					models.FieldError{Field: "industryType", Message: "Invalid industry type"})
			}
			updates["industry_type"] = req.IndustryType
		}
	}

	if len(updates) > 0 {
		if err := h.users.Update(c.Context(), user.ID, updates); err != nil {
			return err
		}
	}

	updated, err := h.users.FindByID(c.Context(), user.ID)
	if err != nil {
		return err
	}

	return Success(c, fiber.StatusOK, "Profile updated successfully", map[string]interface{}{
		"user": updated.PublicProfile(),
	})
}
