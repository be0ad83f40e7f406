package repository

import (
	"time"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/store"

	"go.uber.org/zap"
)

type Repository struct {
	User UserRepository
}

type Stores struct {
	User store.Store[entity.User]
}

func NewRepository(stores Stores, timeout time.Duration, log *zap.Logger) *Repository {
	return &Repository{
		User: NewUserRepository(stores.User, timeout, log),
	}
}
