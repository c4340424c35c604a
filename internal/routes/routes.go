package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/greenchain/internal/auth"
	"github.com/example/greenchain/internal/config"
	"github.com/example/greenchain/internal/handlers"
	"github.com/example/greenchain/internal/middleware"
	"github.com/example/greenchain/internal/repo"
	"github.com/example/greenchain/internal/services"
)

// Deps carries everything the route table needs. Tests mount the same
// routes over in-memory stores and a fake email sender.
type Deps struct {
	Users     repo.UserStore
	Passcodes repo.PasscodeStore
	Email     services.EmailSender
	Cfg       *config.Config
}

// Register wires up all HTTP routes against production dependencies.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	RegisterWith(app, Deps{
		Users:     repo.NewGormUserStore(db),
		Passcodes: repo.NewGormPasscodeStore(db),
		Email: services.NewSMTPEmailService(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom),
		Cfg: cfg,
	})
}

// RegisterWith wires up all HTTP routes against the given dependencies.
func RegisterWith(app *fiber.App, deps Deps) {
	passcodes := auth.NewPasscodeEngine(deps.Passcodes, deps.Cfg.OTPExpiry)
	resets := auth.NewResetEngine(deps.Users, deps.Cfg.ResetTokenExpiry)

	authHandler := handlers.NewAuthHandler(deps.Users, passcodes, resets, deps.Email, deps.Cfg)
	profileHandler := handlers.NewProfileHandler(deps.Users)
	dashboardHandler := handlers.NewDashboardHandler()

	authenticate := middleware.Authenticate(deps.Users, deps.Cfg)

	api := app.Group("/api")

	api.Get("/health", dashboardHandler.Health)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/verify-otp", authHandler.VerifyOTP)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password/:token", authHandler.ResetPassword)
	authGroup.Post("/resend-otp", authHandler.ResendOTP)

	authGroup.Post("/logout", authenticate, authHandler.Logout)
	authGroup.Get("/profile", authenticate, profileHandler.GetProfile)
	authGroup.Put("/profile", authenticate, profileHandler.UpdateProfile)

	// Role-scoped dashboards
	protected := api.Group("/protected", authenticate)
	protected.Get("/test", dashboardHandler.Test)
	protected.Get("/producer/facilities", middleware.RequireResource("facilities"), dashboardHandler.ProducerFacilities)
	protected.Get("/verifier/pending", middleware.RequireResource("verifications"), dashboardHandler.VerifierPending)
	protected.Get("/buyer/marketplace", middleware.RequireResource("marketplace"), dashboardHandler.BuyerMarketplace)
	protected.Get("/regulator/audit", middleware.RequireResource("audit"), dashboardHandler.RegulatorAudit)
	protected.Get("/admin/users", middleware.RequireResource("users"), dashboardHandler.AdminUsers)
}
