package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/greenchain/internal/middleware"
)

// DashboardHandler serves the role-scoped dashboard endpoints. The payloads
// are static placeholders; credit issuance and verification workflows are
// not implemented server-side.
type DashboardHandler struct{}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler() *DashboardHandler { return &DashboardHandler{} }

// Health reports service liveness.
func (h *DashboardHandler) Health(c *fiber.Ctx) error {
	return Success(c, fiber.StatusOK, "GreenChain API is running", map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Test is a smoke endpoint for any authenticated role.
func (h *DashboardHandler) Test(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return Fail(c, fiber.StatusUnauthorized, "Authentication required.")
	}
	return Success(c, fiber.StatusOK, "This is a protected endpoint", map[string]interface{}{
		"user": user.PublicProfile(),
	})
}

// ProducerFacilities lists the producer's facilities.
func (h *DashboardHandler) ProducerFacilities(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	name := "Default Facility"
	if user != nil && user.FacilityDetails.FacilityName != "" {
		name = user.FacilityDetails.FacilityName
	}

	return Success(c, fiber.StatusOK, "Producer facilities data", map[string]interface{}{
		"facilities": []map[string]interface{}{
			{"id": 1, "name": name, "status": "operational", "production": "1250 kg/month"},
		},
	})
}

// VerifierPending lists verifications awaiting review.
func (h *DashboardHandler) VerifierPending(c *fiber.Ctx) error {
	return Success(c, fiber.StatusOK, "Pending verifications", map[string]interface{}{
		"pending": []map[string]interface{}{
			{"id": 1, "producer": "Green Energy Corp", "credits": 50, "submitted": "2024-01-15"},
		},
	})
}

// BuyerMarketplace lists purchasable credits.
func (h *DashboardHandler) BuyerMarketplace(c *fiber.Ctx) error {
	return Success(c, fiber.StatusOK, "Available credits marketplace", map[string]interface{}{
		"credits": []map[string]interface{}{
			{"id": 1, "producer": "Hydrogen Solutions Ltd", "amount": 100, "price": "$50/credit", "verified": true},
		},
	})
}

// RegulatorAudit summarizes system-wide compliance.
func (h *DashboardHandler) RegulatorAudit(c *fiber.Ctx) error {
	return Success(c, fiber.StatusOK, "System audit data", map[string]interface{}{
		"totalTransactions": 12456,
		"complianceRate":    97.8,
		"activeFacilities":  156,
	})
}

// AdminUsers summarizes account statistics.
func (h *DashboardHandler) AdminUsers(c *fiber.Ctx) error {
	return Success(c, fiber.StatusOK, "User management data", map[string]interface{}{
		"totalUsers":       1234,
		"activeUsers":      1156,
		"newUsersThisWeek": 15,
	})
}
