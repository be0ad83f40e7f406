package usecase

import (
	"context"
	"fmt"
	"time"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/repository"
	"admin-backend/pkg/security"
	"admin-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeedAdmin creates the configured admin account if it does not exist yet.
func SeedAdmin(ctx context.Context, userRepo repository.UserRepository, hasher security.PasswordHasher, config utils.SeedConfig, log *zap.Logger) error {
	log = log.With(zap.String("service", "seed"))

	if !config.Enabled || config.Password == "" {
		log.Info("Admin seeding skipped")
		return nil
	}

	existing, err := userRepo.FindByUsername(ctx, config.Username)
	if err != nil {
		return fmt.Errorf("look up admin %s: %w", config.Username, err)
	}
	if existing != nil {
		return nil
	}

	hash, err := hasher.Hash(config.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := &entity.User{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Role:         entity.RoleAdmin,
		AccountName:  config.AccountName,
		Username:     config.Username,
		PasswordHash: hash,
		IsActive:     true,
	}
	if _, err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin %s: %w", config.Username, err)
	}

	log.Info("Admin account created", zap.String("username", admin.Username))
	return nil
}
