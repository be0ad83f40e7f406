package usecase

import (
	"context"
	"strings"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/repository"
	"admin-backend/pkg/apperror"
	"admin-backend/pkg/security"
	"admin-backend/pkg/utils"

	"go.uber.org/zap"
)

// AccessGuard authorizes one request. requiredRole "" means any authenticated user.
type AccessGuard interface {
	Authorize(ctx context.Context, authorization, deviceID string, requiredRole entity.UserRole) (utils.Identity, error)
}

type accessGuard struct {
	userRepo repository.UserRepository
	tokens   security.TokenIssuer
	secret   []byte
	log      *zap.Logger
}

func NewAccessGuard(userRepo repository.UserRepository, tokens security.TokenIssuer, config *utils.Config, log *zap.Logger) AccessGuard {
	return &accessGuard{
		userRepo: userRepo,
		tokens:   tokens,
		secret:   []byte(config.JWT.AccessSecret),
		log:      log.With(zap.String("service", "guard")),
	}
}

func (g *accessGuard) Authorize(ctx context.Context, authorization, deviceID string, requiredRole entity.UserRole) (utils.Identity, error) {
	// 1. Bearer token
	token, ok := bearerToken(authorization)
	if !ok {
		return utils.Identity{}, g.reject("missing_token", "")
	}

	// 2. Signature dan expiry
	payload, err := g.tokens.Verify(token, g.secret)
	if err != nil {
		return utils.Identity{}, g.reject(tokenFailureReason(err), "").WithCause(err)
	}

	// 3. Device di header harus sama dengan device di token
	if deviceID != payload.DeviceID {
		return utils.Identity{}, g.reject("device_mismatch", payload.UserID.String()).WithMessage(apperror.MsgLoggedInElsewhere)
	}

	// 4. Binding di server masih berlaku dan akun masih aktif
	user, err := g.userRepo.FindBound(ctx, payload.UserID, deviceID)
	if err != nil {
		return utils.Identity{}, err
	}
	if user == nil {
		return utils.Identity{}, g.reject("binding_lost", payload.UserID.String())
	}
	if !user.IsActive {
		return utils.Identity{}, g.reject("account_locked", payload.UserID.String())
	}

	// 5. Role
	if requiredRole != "" && payload.Role != string(requiredRole) {
		return utils.Identity{}, g.reject("insufficient_role", payload.UserID.String())
	}

	return utils.Identity{
		UserID:   payload.UserID,
		Role:     payload.Role,
		DeviceID: payload.DeviceID,
	}, nil
}

func (g *accessGuard) reject(reason, userID string) *apperror.Error {
	g.log.Warn("Request rejected", zap.String("reason", reason), zap.String("user_id", userID))
	return apperror.Unauthorized("").WithReason(reason)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
