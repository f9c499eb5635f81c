// inventoryd is the device-inventory backend.
//
// It serves the REST API (login/logout, session-gated device CRUD) over a
// SQLite store, running migrations and seeding the initial admin account
// on first boot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/akopytov/inventory-core/migrations"

	"github.com/akopytov/inventory-core/internal/api"
	"github.com/akopytov/inventory-core/internal/auth"
	"github.com/akopytov/inventory-core/internal/device"
	"github.com/akopytov/inventory-core/internal/infrastructure/config"
	"github.com/akopytov/inventory-core/internal/infrastructure/database"
	"github.com/akopytov/inventory-core/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting inventory backend", "version", version, "commit", commit)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories and session authority
	userRepo := auth.NewUserRepository(db.DB)
	deviceRepo := device.NewRepository(db.DB)
	sessions := auth.NewSessions(userRepo, cfg.Auth.JWTSecret, cfg.SessionTokenTTL(), log.Logger)

	// First-boot admin account
	if _, seedErr := auth.SeedAdmin(ctx, userRepo, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}

	// API server
	server, err := api.New(api.Deps{
		Config:   cfg,
		Logger:   log,
		Sessions: sessions,
		Devices:  deviceRepo,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("inventory backend running",
		"address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
	)

	// Block until interrupted
	<-ctx.Done()
	log.Info("shutdown signal received")

	return nil
}

// getConfigPath returns the config file path from args or the default.
func getConfigPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	if env := os.Getenv("INVENTORY_CONFIG"); env != "" {
		return env
	}
	return defaultConfigPath
}
