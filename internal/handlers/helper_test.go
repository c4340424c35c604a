package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/example/greenchain/internal/config"
	"github.com/example/greenchain/internal/handlers"
	"github.com/example/greenchain/internal/models"
	"github.com/example/greenchain/internal/repo"
	"github.com/example/greenchain/internal/routes"
)

type sentEmail struct {
	To      string
	Payload string // code or reset link
	Name    string
}

// fakeEmail records outgoing mail; set fail to simulate a transport outage.
type fakeEmail struct {
	mu            sync.Mutex
	verifications []sentEmail
	resets        []sentEmail
	fail          bool
}

func (f *fakeEmail) SendVerificationCode(to, code, name string) error {
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifications = append(f.verifications, sentEmail{To: to, Payload: code, Name: name})
	return nil
}

func (f *fakeEmail) SendPasswordResetLink(to, link, name string) error {
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, sentEmail{To: to, Payload: link, Name: name})
	return nil
}

func (f *fakeEmail) lastCode(t *testing.T) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.verifications)
	return f.verifications[len(f.verifications)-1].Payload
}

func (f *fakeEmail) lastResetLink(t *testing.T) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.resets)
	return f.resets[len(f.resets)-1].Payload
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
	Errors  []models.FieldError    `json:"errors"`
}

type testEnv struct {
	app   *fiber.App
	users *repo.MemoryUserStore
	codes *repo.MemoryPasscodeStore
	email *fakeEmail
	cfg   *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		TokenExpires:     time.Hour,
		OTPExpiry:        10 * time.Minute,
		ResetTokenExpiry: time.Hour,
		FrontendURL:      "http://localhost:3000",
	}

	env := &testEnv{
		users: repo.NewMemoryUserStore(),
		codes: repo.NewMemoryPasscodeStore(),
		email: &fakeEmail{},
		cfg:   cfg,
	}

	env.app = fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.RegisterWith(env.app, routes.Deps{
		Users:     env.users,
		Passcodes: env.codes,
		Email:     env.email,
		Cfg:       cfg,
	})

	return env
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, headers map[string]string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	}
	return resp, env
}

func buyerSignupBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"email":        email,
		"password":     "Abcd123!",
		"companyName":  "Acme",
		"role":         "buyer",
		"industryType": "steel",
	}
}

// signupAndVerify walks an account through signup and OTP verification and
// returns the issued session token.
func (e *testEnv) signupAndVerify(t *testing.T, email string) string {
	t.Helper()

	resp, _ := e.request(t, fiber.MethodPost, "/api/auth/signup", buyerSignupBody(email), nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := e.request(t, fiber.MethodPost, "/api/auth/verify-otp", map[string]interface{}{
		"email": email,
		"otp":   e.email.lastCode(t),
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	token, ok := body.Data["token"].(string)
	require.True(t, ok)
	return token
}
