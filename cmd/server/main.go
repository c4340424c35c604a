package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/greenchain/internal/config"
	"github.com/example/greenchain/internal/database"
	"github.com/example/greenchain/internal/handlers"
	"github.com/example/greenchain/internal/logs"
	"github.com/example/greenchain/internal/repo"
	"github.com/example/greenchain/internal/routes"
)

func main() {
	cfg := config.Load()
	logs.Init(logs.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName:      "GreenChain Backend",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	routes.Register(app, db, cfg)

	// Postgres has no TTL index, so expired passcodes are swept here. The
	// passcode engine never trusts a stale record regardless of sweep lag.
	go sweepExpiredPasscodes(repo.NewGormPasscodeStore(db), cfg.OTPExpiry)

	logs.Logger.Infof("starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		logs.Logger.Fatalf("fiber.Listen error: %v", err)
	}
}

func sweepExpiredPasscodes(store repo.PasscodeStore, ttl time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		removed, err := store.DeleteExpired(context.Background(), time.Now().Add(-ttl))
		if err != nil {
			logs.Logger.WithError(err).Warn("passcode sweep failed")
			continue
		}
		if removed > 0 {
			logs.Logger.WithField("removed", removed).Debug("expired passcodes swept")
		}
	}
}
