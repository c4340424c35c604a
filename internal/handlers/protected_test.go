package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/greenchain/internal/utils"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, fiber.MethodGet, "/api/health", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
}

func TestProtectedRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, fiber.MethodGet, "/api/auth/profile", nil, nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Access denied. No token provided.", body.Message)
}

func TestProtectedAcceptsBearerAndCookie(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupAndVerify(t, "a@b.com")

	resp, _ := env.request(t, fiber.MethodGet, "/api/auth/profile", nil,
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = env.request(t, fiber.MethodGet, "/api/auth/profile", nil,
		map[string]string{"Cookie": "jwt=" + token})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProtectedRejectsExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	env.signupAndVerify(t, "a@b.com")

	user, err := env.users.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)

	expired, err := utils.GenerateToken(env.cfg.JWTSecret, user.ID, -time.Minute)
	require.NoError(t, err)

	resp, body := env.request(t, fiber.MethodGet, "/api/auth/profile", nil,
		map[string]string{"Authorization": "Bearer " + expired})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token expired. Please login again.", body.Message)

	resp, body = env.request(t, fiber.MethodGet, "/api/auth/profile", nil,
		map[string]string{"Authorization": "Bearer garbage"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token.", body.Message)
}

func TestProtectedRejectsDeactivatedUser(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupAndVerify(t, "a@b.com")

	user, err := env.users.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NoError(t, env.users.Update(context.Background(), user.ID,
		map[string]interface{}{"is_active": false}))

	resp, body := env.request(t, fiber.MethodGet, "/api/auth/profile", nil,
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Account has been deactivated.", body.Message)
}

func TestRoleAllowLists(t *testing.T) {
	env := newTestEnv(t)
	buyerToken := env.signupAndVerify(t, "buyer@b.com")

	// Buyer reaches the marketplace.
	resp, _ := env.request(t, fiber.MethodGet, "/api/protected/buyer/marketplace", nil,
		map[string]string{"Authorization": "Bearer " + buyerToken})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// But not producer facilities.
	resp, body := env.request(t, fiber.MethodGet, "/api/protected/producer/facilities", nil,
		map[string]string{"Authorization": "Bearer " + buyerToken})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body.Message, "buyer")

	// Any authenticated role reaches the test endpoint.
	resp, _ = env.request(t, fiber.MethodGet, "/api/protected/test", nil,
		map[string]string{"Authorization": "Bearer " + buyerToken})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProducerFacilityEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, fiber.MethodPost, "/api/auth/signup", map[string]interface{}{
		"email":       "producer@b.com",
		"password":    "Abcd123!",
		"companyName": "HydroCo",
		"role":        "producer",
		"facilityDetails": map[string]interface{}{
			"facility_name": "Electrolyzer One",
			"location":      "Rotterdam",
			"capacity":      1250,
			"technology":    "PEM",
		},
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := env.request(t, fiber.MethodPost, "/api/auth/verify-otp", map[string]interface{}{
		"email": "producer@b.com",
		"otp":   env.email.lastCode(t),
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token := body.Data["token"].(string)

	resp, body = env.request(t, fiber.MethodGet, "/api/protected/producer/facilities", nil,
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	facilities := body.Data["facilities"].([]interface{})
	require.Len(t, facilities, 1)
	assert.Equal(t, "Electrolyzer One", facilities[0].(map[string]interface{})["name"])
}

func TestProfileUpdate(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupAndVerify(t, "a@b.com")
	header := map[string]string{"Authorization": "Bearer " + token}

	resp, body := env.request(t, fiber.MethodPut, "/api/auth/profile", map[string]interface{}{
		"companyName":  "Acme Hydrogen",
		"industryType": "ammonia",
	}, header)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	user := body.Data["user"].(map[string]interface{})
	assert.Equal(t, "Acme Hydrogen", user["company_name"])
	assert.Equal(t, "ammonia", user["industry_type"])

	// Role never changes through profile updates.
	assert.Equal(t, "buyer", user["role"])
}

func TestProfileUpdateIgnoresOtherRolesSections(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupAndVerify(t, "a@b.com")

	resp, body := env.request(t, fiber.MethodPut, "/api/auth/profile", map[string]interface{}{
		"facilityDetails": map[string]interface{}{"facility_name": "Not Yours"},
	}, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// A buyer's profile never grows facility details.
	user := body.Data["user"].(map[string]interface{})
	_, present := user["facility_details"]
	assert.False(t, present)
}

func TestProfileUpdateValidatesIndustryType(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupAndVerify(t, "a@b.com")

	resp, _ := env.request(t, fiber.MethodPut, "/api/auth/profile", map[string]interface{}{
		"industryType": "mining",
	}, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupAndVerify(t, "a@b.com")

	resp, body := env.request(t, fiber.MethodPost, "/api/auth/logout", nil,
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)

	cookies := resp.Header.Values("Set-Cookie")
	require.NotEmpty(t, cookies)
	assert.Contains(t, cookies[0], "jwt=")
	assert.Contains(t, cookies[0], "expires=")
}
