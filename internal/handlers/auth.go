package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/greenchain/internal/auth"
	"github.com/example/greenchain/internal/config"
	"github.com/example/greenchain/internal/logs"
	"github.com/example/greenchain/internal/models"
	"github.com/example/greenchain/internal/repo"
	"github.com/example/greenchain/internal/services"
	"github.com/example/greenchain/internal/utils"
)

// sessionCookie is the name of the HTTP-only session cookie.
const sessionCookie = "jwt"

// AuthHandler bundles dependencies for the authentication endpoints.
type AuthHandler struct {
	users     repo.UserStore
	passcodes *auth.PasscodeEngine
	resets    *auth.ResetEngine
	email     services.EmailSender
	cfg       *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users repo.UserStore, passcodes *auth.PasscodeEngine, resets *auth.ResetEngine, email services.EmailSender, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, passcodes: passcodes, resets: resets, email: email, cfg: cfg}
}

type signupRequest struct {
	Email             string                   `json:"email"`
	Password          string                   `json:"password"`
	Role              models.Role              `json:"role"`
	CompanyName       string                   `json:"companyName"`
	FacilityDetails   models.FacilityDetails   `json:"facilityDetails"`
	CertificationBody models.CertificationBody `json:"certificationBody"`
	IndustryType      string                   `json:"industryType"`
}

// Signup registers a new unverified account and dispatches a verification
// code. A verified account with the same email blocks the signup; a stale
// unverified one is purged and replaced.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if errs := validateSignup(&req); len(errs) > 0 {
		return Fail(c, fiber.StatusBadRequest, "Validation failed", errs...)
	}

	email := models.NormalizeEmail(req.Email)

	existing, err := h.users.FindByEmail(c.Context(), email)
	if err != nil && !errors.Is(err, repo.ErrUserNotFound) {
		return err
	}
	if existing != nil {
		if existing.IsEmailVerified {
			return Fail(c, fiber.StatusBadRequest, "User with this email already exists")
		}
		// Unverified leftover from an abandoned signup: purge and retry.
		if err := h.users.DeleteByEmail(c.Context(), email); err != nil {
			return err
		}
	}

	user, err := models.NewUser(models.NewUserParams{
		Email:             email,
		Password:          req.Password,
		Role:              req.Role,
		CompanyName:       req.CompanyName,
		FacilityDetails:   req.FacilityDetails,
		CertificationBody: req.CertificationBody,
		IndustryType:      req.IndustryType,
	})
	if err != nil {
		return err
	}

	// The unique index on email is the real race guard; the pre-check above
	// only produces the friendlier message.
	if err := h.users.Create(c.Context(), user); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return Fail(c, fiber.StatusBadRequest, "User with this email already exists")
		}
		return err
	}

	code, err := h.passcodes.Issue(c.Context(), email)
	if err != nil {
		return err
	}

	if err := h.email.SendVerificationCode(email, code, user.CompanyName); err != nil {
		return Fail(c, fiber.StatusInternalServerError, "Failed to send verification email")
	}

	return Success(c, fiber.StatusCreated,
		"User registered successfully. Please check your email for verification code.",
		map[string]interface{}{
			"userId":      user.ID,
			"email":       user.Email,
			"role":        user.Role,
			"companyName": user.CompanyName,
		})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTP validates a submitted code, marks the account's email verified
// and opens a session.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if !validEmail(req.Email) || !validOTP(req.OTP) {
		return Fail(c, fiber.StatusBadRequest, "Validation failed",
			models.FieldError{Field: "otp", Message: "OTP must be exactly 4 digits"})
	}

	email := models.NormalizeEmail(req.Email)

	if err := h.passcodes.Verify(c.Context(), email, req.OTP); err != nil {
		switch {
		case errors.Is(err, auth.ErrCodeInvalidOrExpired):
			return Fail(c, fiber.StatusBadRequest, "Invalid or expired OTP",
				models.FieldError{Field: "otp", Message: "Invalid or expired OTP"})
		case errors.Is(err, auth.ErrCodeAttemptsExceeded):
			return Fail(c, fiber.StatusBadRequest, "Maximum OTP attempts exceeded. Please request a new OTP.",
				models.FieldError{Field: "otp", Message: "Maximum attempts exceeded"})
		case errors.Is(err, auth.ErrCodeMismatch):
			return Fail(c, fiber.StatusBadRequest, "Invalid OTP code",
				models.FieldError{Field: "otp", Message: "Invalid OTP code"})
		default:
			return err
		}
	}

	user, err := h.users.FindByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return Fail(c, fiber.StatusBadRequest, "User not found")
		}
		return err
	}

	if err := h.users.Update(c.Context(), user.ID, map[string]interface{}{"is_email_verified": true}); err != nil {
		return err
	}
	user.IsEmailVerified = true

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, token)

	return Success(c, fiber.StatusOK, "Email verified successfully", map[string]interface{}{
		"user":  user.PublicProfile(),
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an active, verified account. Unknown email and wrong
// password produce identical responses.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if !validEmail(req.Email) || req.Password == "" {
		return Fail(c, fiber.StatusBadRequest, "Validation failed",
			models.FieldError{Field: "email", Message: "Email and password are required"})
	}

	user, err := h.users.FindByEmail(c.Context(), models.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return Fail(c, fiber.StatusUnauthorized, "Invalid email or password",
				models.FieldError{Field: "email", Message: "Invalid email or password"})
		}
		return err
	}

	if !user.IsActive {
		return Fail(c, fiber.StatusUnauthorized, "Account has been deactivated",
			models.FieldError{Field: "email", Message: "Account has been deactivated"})
	}

	if !user.IsEmailVerified {
		return Fail(c, fiber.StatusUnauthorized, "Please verify your email before logging in",
			models.FieldError{Field: "email", Message: "Please verify your email before logging in"})
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return Fail(c, fiber.StatusUnauthorized, "Invalid email or password",
			models.FieldError{Field: "password", Message: "Invalid email or password"})
	}

	now := time.Now()
	if err := h.users.Update(c.Context(), user.ID, map[string]interface{}{"last_login": now}); err != nil {
		return err
	}
	user.LastLogin = &now

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, token)

	return Success(c, fiber.StatusOK, "Login successful", map[string]interface{}{
		"user":  user.PublicProfile(),
		"token": token,
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

const forgotPasswordMessage = "If an account with this email exists, you will receive a password reset link."

// ForgotPassword issues a reset token and emails a reset link. The response
// is the same whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if !validEmail(req.Email) {
		return Fail(c, fiber.StatusBadRequest, "Validation failed",
			models.FieldError{Field: "email", Message: "Please provide a valid email address"})
	}

	user, err := h.users.FindByEmail(c.Context(), models.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return Success(c, fiber.StatusOK, forgotPasswordMessage, nil)
		}
		return err
	}

	token, err := h.resets.Issue(c.Context(), user)
	if err != nil {
		return err
	}

	link := h.cfg.FrontendURL + "/reset-password/" + token
	if err := h.email.SendPasswordResetLink(user.Email, link, user.CompanyName); err != nil {
		return Fail(c, fiber.StatusInternalServerError, "Failed to send password reset email")
	}

	return Success(c, fiber.StatusOK, forgotPasswordMessage, nil)
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// ResetPassword redeems a reset token from the URL and replaces the
// password. No session is issued; the user must log in again.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	token := c.Params("token")

	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if len(token) != resetTokenLength {
		return Fail(c, fiber.StatusBadRequest, "Invalid or expired reset token",
			models.FieldError{Field: "token", Message: "Invalid reset token format"})
	}
	if !validPassword(req.Password) {
		return Fail(c, fiber.StatusBadRequest, "Validation failed",
			models.FieldError{
				Field:   "password",
				Message: "Password must be at least 8 characters and contain an uppercase letter, a lowercase letter, a number, and a special character",
			})
	}

	if err := h.resets.Consume(c.Context(), token, req.Password); err != nil {
		if errors.Is(err, auth.ErrResetTokenInvalid) {
			return Fail(c, fiber.StatusBadRequest, "Invalid or expired reset token",
				models.FieldError{Field: "token", Message: "Invalid or expired reset token"})
		}
		return err
	}

	return Success(c, fiber.StatusOK,
		"Password reset successfully. You can now login with your new password.", nil)
}

type resendOTPRequest struct {
	Email string `json:"email"`
}

// ResendOTP replaces any outstanding verification code for an unverified
// account and dispatches a fresh one.
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req resendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if !validEmail(req.Email) {
		return Fail(c, fiber.StatusBadRequest, "Validation failed",
			models.FieldError{Field: "email", Message: "Please provide a valid email address"})
	}

	email := models.NormalizeEmail(req.Email)

	user, err := h.users.FindByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return Fail(c, fiber.StatusBadRequest, "User not found",
				models.FieldError{Field: "email", Message: "User not found"})
		}
		return err
	}

	if user.IsEmailVerified {
		return Fail(c, fiber.StatusBadRequest, "Email is already verified",
			models.FieldError{Field: "email", Message: "Email is already verified"})
	}

	code, err := h.passcodes.Issue(c.Context(), email)
	if err != nil {
		return err
	}

	if err := h.email.SendVerificationCode(email, code, user.CompanyName); err != nil {
		return Fail(c, fiber.StatusInternalServerError, "Failed to send verification email")
	}

	return Success(c, fiber.StatusOK, "New OTP sent successfully. Please check your email.", nil)
}

// Logout clears the session cookie. Tokens are stateless, so there is
// nothing to revoke server-side.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})

	logs.Logger.Debug("session cookie cleared")
	return Success(c, fiber.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Expires:  time.Now().Add(h.cfg.TokenExpires),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
