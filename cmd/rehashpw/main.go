// rehashpw is a one-time maintenance tool that converts legacy plaintext
// credentials to Argon2id hashes.
//
// It scans the users table and re-hashes any row whose stored credential
// is not already in PHC format. Rows that are already hashed are left
// untouched, so the tool is safe to run repeatedly. Run it with the
// server stopped; it takes the same configuration.
package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/akopytov/inventory-core/migrations"

	"github.com/akopytov/inventory-core/internal/auth"
	"github.com/akopytov/inventory-core/internal/infrastructure/config"
	"github.com/akopytov/inventory-core/internal/infrastructure/database"
	"github.com/akopytov/inventory-core/internal/infrastructure/logging"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logging.Default()

	configPath := defaultConfigPath
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Process exits after run

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	repo := auth.NewUserRepository(db.DB)

	users, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	log.Info("scanning users for plaintext credentials", "total", len(users))

	rehashed := 0
	for _, u := range users {
		if auth.IsHashed(u.PasswordHash) {
			continue
		}

		hash, err := auth.HashPassword(u.PasswordHash)
		if err != nil {
			return fmt.Errorf("hashing credential for user %d: %w", u.ID, err)
		}
		if err := repo.UpdatePassword(ctx, u.ID, hash); err != nil {
			return fmt.Errorf("updating credential for user %d: %w", u.ID, err)
		}

		log.Info("re-hashed credential", "user_id", u.ID, "name", u.Name)
		rehashed++
	}

	log.Info("done", "rehashed", rehashed, "skipped", len(users)-rehashed)
	return nil
}
