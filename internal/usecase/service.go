package usecase

import (
	"admin-backend/internal/data/repository"
	"admin-backend/pkg/security"
	"admin-backend/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth  AuthService
	User  UserService
	Guard AccessGuard
}

func NewService(repo *repository.Repository, hasher security.PasswordHasher, tokens security.TokenIssuer, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:  NewAuthService(repo.User, hasher, tokens, config, log),
		User:  NewUserService(repo.User, hasher, log),
		Guard: NewAccessGuard(repo.User, tokens, config, log),
	}
}
