package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/taaskly/taaskly/internal/adapters/sqlite"
	"github.com/taaskly/taaskly/internal/app/linkshare"
	"github.com/taaskly/taaskly/internal/config"
	"github.com/taaskly/taaskly/internal/db"
	"github.com/taaskly/taaskly/internal/server"
	"github.com/taaskly/taaskly/internal/server/routes"
)

func Run() error {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.IsLocalDevelopment() && cfg.Auth.SessionSecret == "taaskly-local-dev" {
		slog.Warn("TAASKLY_SESSION_SECRET not set, using local development fallback")
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	routes.ConfigureAuth(routes.AuthConfig{
		SessionKey:         cfg.Auth.SessionSecret,
		WorkplaceAppID:     cfg.Auth.WorkplaceAppID,
		WorkplaceAppSecret: cfg.Auth.WorkplaceAppSecret,
		WorkplaceCallback:  cfg.Auth.WorkplaceCallback,
		SecureCookies:      cfg.Auth.SecureCookie,
	})

	store := sqlite.NewStore(database)

	srv := server.New(log)
	srv.RegisterRouter(routes.NewAuthRoutes(store))
	srv.RegisterRouter(routes.NewAPIRoutes(store))
	srv.RegisterRouter(routes.NewAdminRoutes(store))
	srv.RegisterRouter(routes.NewWebhookRoutes(store, linkshare.Config{BaseURL: cfg.App.BaseURL}, log))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Starting server", "port", cfg.Server.Port)
	return srv.Start(addr)
}

func main() {
	if err := Run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
