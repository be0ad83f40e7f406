package usecase

import (
	"context"
	"errors"
	"time"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/repository"
	"admin-backend/internal/dto/request"
	"admin-backend/internal/dto/response"
	"admin-backend/pkg/apperror"
	"admin-backend/pkg/security"
	"admin-backend/pkg/utils"

	"go.uber.org/zap"
)

type AuthService interface {
	Login(ctx context.Context, req *request.LoginRequest, deviceID string) (*response.TokenResponse, error)
	Refresh(ctx context.Context, req *request.RefreshRequest, deviceID string) (*response.TokenResponse, error)
	Logout(ctx context.Context, identity utils.Identity) (*response.MessageResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	tokens   security.TokenIssuer
	jwt      utils.JWTConfig
	auth     utils.AuthConfig
	log      *zap.Logger
	now      func() time.Time
	// dummyHash is compared against for unknown usernames so both login
	// failures cost one bcrypt comparison.
	dummyHash string
}

const dummyPassword = "admin-backend-unknown-user"

func NewAuthService(
	userRepo repository.UserRepository,
	hasher security.PasswordHasher,
	tokens security.TokenIssuer,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	s := &authService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		jwt:      config.JWT,
		auth:     config.Auth,
		log:      log.With(zap.String("service", "auth")),
		now:      time.Now,
	}

	hash, err := hasher.Hash(dummyPassword)
	if err != nil {
		s.log.Error("Failed to prepare dummy password hash", zap.Error(err))
	}
	s.dummyHash = hash
	return s
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, deviceID string) (*response.TokenResponse, error) {
	// 1. Validasi
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}
	if deviceID == "" {
		return nil, apperror.Validation("X-Device-Id header is required")
	}

	// 2. Cari user
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.Compare(req.Password, s.dummyHash)
		s.log.Warn("Login for unknown username")
		return nil, apperror.InvalidCredentials()
	}

	// 3. Akun terkunci
	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, apperror.AccountLocked()
	}

	// 4. Cek password
	if !s.hasher.Compare(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, apperror.InvalidCredentials()
	}

	// 5. Akun sudah terikat ke device lain
	if user.BoundElsewhere(deviceID) {
		s.log.Warn("Login from a second device rejected", zap.String("user_id", user.ID.String()))
		return nil, apperror.DeviceConflict()
	}

	tokens, err := s.issue(ctx, user, deviceID)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))
	return tokens, nil
}

func (s *authService) Refresh(ctx context.Context, req *request.RefreshRequest, deviceID string) (*response.TokenResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Unauthorized("").WithReason("missing_refresh_token")
	}

	payload, err := s.tokens.Verify(req.RefreshToken, []byte(s.jwt.RefreshSecret))
	if err != nil {
		reason := tokenFailureReason(err)
		s.log.Warn("Refresh token rejected", zap.String("reason", reason))
		return nil, apperror.Unauthorized("").WithReason(reason).WithCause(err)
	}

	if deviceID == "" || payload.DeviceID != deviceID {
		s.log.Warn("Refresh from another device", zap.String("user_id", payload.UserID.String()))
		return nil, apperror.Unauthorized("").WithReason("device_mismatch")
	}

	user, err := s.userRepo.FindBound(ctx, payload.UserID, deviceID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.log.Warn("Refresh for an unbound account", zap.String("user_id", payload.UserID.String()))
		return nil, apperror.Unauthorized("").WithReason("binding_lost")
	}
	if !user.IsActive {
		s.log.Warn("Refresh for an inactive account", zap.String("user_id", user.ID.String()))
		return nil, apperror.Unauthorized("").WithReason("account_locked")
	}

	tokens, err := s.issue(ctx, user, deviceID)
	if err != nil {
		// the binding moved between the lookup and the rebind
		if apperror.KindOf(err) == apperror.KindDeviceConflict {
			return nil, apperror.Unauthorized("").WithReason("binding_lost").WithCause(err)
		}
		return nil, err
	}
	return tokens, nil
}

// Logout with release enabled clears the binding only while it still belongs to the caller's device.
func (s *authService) Logout(ctx context.Context, identity utils.Identity) (*response.MessageResponse, error) {
	if s.auth.ReleaseDeviceOnLogout {
		released, err := s.userRepo.ReleaseDevice(ctx, identity.UserID, identity.DeviceID)
		if err != nil {
			return nil, err
		}
		if !released {
			s.log.Warn("Logout did not release binding", zap.String("user_id", identity.UserID.String()))
		}
	}

	s.log.Info("User logged out", zap.String("user_id", identity.UserID.String()))
	return &response.MessageResponse{Message: apperror.MsgLogoutSuccessfully}, nil
}

// issue binds deviceID to the account and signs a fresh token pair.
func (s *authService) issue(ctx context.Context, user *entity.User, deviceID string) (*response.TokenResponse, error) {
	bound, err := s.userRepo.BindDevice(ctx, user.ID, deviceID, s.now())
	if err != nil {
		return nil, err
	}

	payload := security.Payload{
		UserID:   bound.ID,
		Role:     string(bound.Role),
		DeviceID: deviceID,
	}

	accessToken, err := s.tokens.Sign(payload, []byte(s.jwt.AccessSecret), s.jwt.AccessTTL)
	if err != nil {
		s.log.Error("Failed to sign access token", zap.Error(err))
		return nil, apperror.Internal("", err)
	}
	refreshToken, err := s.tokens.Sign(payload, []byte(s.jwt.RefreshSecret), s.jwt.RefreshTTL)
	if err != nil {
		s.log.Error("Failed to sign refresh token", zap.Error(err))
		return nil, apperror.Internal("", err)
	}

	return &response.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Username:     bound.Username,
	}, nil
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, security.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, security.ErrTokenBadSignature):
		return "token_bad_signature"
	default:
		return "token_malformed"
	}
}
