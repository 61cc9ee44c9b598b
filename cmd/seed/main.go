package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/config"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/domain/entity"
	repo "github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/domain/repository"
	pginfra "github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/infrastructure/postgres"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/helpers"
)

// seed creates the admin account from SEED_ADMIN_*. Running it twice is a no-op.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	if cfg.SeedAdminPassword == "" {
		logger.Fatal("SEED_ADMIN_PASSWORD must be set")
	}

	username := strings.TrimSpace(cfg.SeedAdminUsername)
	email := strings.TrimSpace(cfg.SeedAdminEmail)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, time.Minute)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool, cfg.DBQueryTimeout)

	exists, err := users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		logger.WithError(err).Fatal("failed to check existing admin")
	}
	if exists {
		logger.WithField("username", username).Info("admin already present, nothing to do")
		return
	}

	hash, err := helpers.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		logger.WithError(err).Fatal("failed to hash password")
	}
	created, err := users.Create(ctx, &entity.User{
		Username: username,
		Password: hash,
		Email:    email,
		Role:     entity.RoleAdmin,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		logger.WithField("username", username).Info("admin created concurrently, nothing to do")
		return
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to seed admin")
	}
	logger.WithField("id", created.ID).WithField("username", created.Username).Info("seeded admin user")
}
