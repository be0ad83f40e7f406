package usecase

import (
	"context"
	"testing"
	"time"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/repository"
	"admin-backend/internal/data/store"
	"admin-backend/pkg/security"
	"admin-backend/pkg/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	config  *utils.Config
	repo    *repository.Repository
	hasher  security.PasswordHasher
	tokens  security.TokenIssuer
	service *Service
}

func testConfig() *utils.Config {
	return &utils.Config{
		JWT: utils.JWTConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    time.Hour,
		},
		Auth:  utils.AuthConfig{ReleaseDeviceOnLogout: true, BcryptCost: bcrypt.MinCost},
		Query: utils.QueryConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}
}

func newTestEnv(t *testing.T, mutate ...func(c *utils.Config)) *testEnv {
	t.Helper()

	config := testConfig()
	for _, m := range mutate {
		m(config)
	}

	repo := repository.NewRepository(repository.Stores{User: store.NewMemoryStore[entity.User]()}, time.Second, zap.NewNop())
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	tokens := security.NewTokenIssuer()

	return &testEnv{
		config:  config,
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		service: NewService(repo, hasher, tokens, config, zap.NewNop()),
	}
}

func (e *testEnv) addUser(t *testing.T, username, password string, role entity.UserRole, active bool) *entity.User {
	t.Helper()

	hash, err := e.hasher.Hash(password)
	require.NoError(t, err)

	user, err := e.repo.User.Create(context.Background(), &entity.User{
		Role:         role,
		AccountName:  username,
		Username:     username,
		PasswordHash: hash,
		IsActive:     active,
	})
	require.NoError(t, err)
	return user
}
