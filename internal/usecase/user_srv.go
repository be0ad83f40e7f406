package usecase

import (
	"context"
	"time"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/query"
	"admin-backend/internal/data/repository"
	"admin-backend/internal/data/store"
	"admin-backend/internal/dto/request"
	"admin-backend/internal/dto/response"
	"admin-backend/pkg/apperror"
	"admin-backend/pkg/security"
	"admin-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	GetUser(ctx context.Context, id uuid.UUID) (*response.UserResponse, error)
	ListUsers(ctx context.Context, req request.ListRequest) (*response.PaginatedResponse[response.UserResponse], error)
	CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *request.UpdateUserRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (*response.UserResponse, error)
	// ReleaseDevice clears the device binding of a user regardless of which device holds it.
	ReleaseDevice(ctx context.Context, id uuid.UUID) (*response.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, hasher security.PasswordHasher, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		hasher:   hasher,
		log:      log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	return us.GetUser(ctx, userID)
}

func (us *userService) GetUser(ctx context.Context, id uuid.UUID) (*response.UserResponse, error) {
	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) ListUsers(ctx context.Context, req request.ListRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	pred, err := query.ParseAndCompile(req.Filter)
	if err != nil {
		return nil, apperror.Validation("%s", err.Error()).WithCause(err)
	}

	var sort *query.Sort
	if req.Sort != "" {
		if sort, err = query.ParseSort(req.Sort); err != nil {
			return nil, apperror.Validation("%s", err.Error()).WithCause(err)
		}
	}

	page := req.Pagination()
	users, err := us.userRepo.Find(ctx, pred, nil, &page, sort, entity.PublicUser)
	if err != nil {
		return nil, err
	}

	total, err := us.userRepo.Count(ctx, pred)
	if err != nil {
		return nil, err
	}

	return response.NewPaginatedResponse(response.UsersToResponse(users), page, total), nil
}

func (us *userService) CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error) {
	// 1. Validasi input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Username harus unik
	existing, err := us.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict(apperror.MsgUsernameTaken)
	}

	// 3. Hash password
	hash, err := us.hasher.Hash(req.Password)
	if err != nil {
		us.log.Error("Failed to hash password", zap.Error(err))
		return nil, apperror.Internal(apperror.MsgErrorCreatingRecord, err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := time.Now().UTC()
	user := &entity.User{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Role:         entity.UserRole(req.Role),
		AccountName:  req.AccountName,
		Username:     req.Username,
		PasswordHash: hash,
		Phone:        req.Phone,
		IsActive:     isActive,
		Description:  req.Description,
	}

	// 4. Simpan; unique index tetap jadi penjaga terakhir untuk race
	created, err := us.userRepo.Create(ctx, user)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindConflict {
			return nil, apperror.Conflict(apperror.MsgUsernameTaken).WithCause(err)
		}
		return nil, err
	}

	us.log.Info("User created",
		zap.String("user_id", created.ID.String()),
		zap.String("username", created.Username))

	resp := response.UserToResponse(created)
	return &resp, nil
}

func (us *userService) UpdateUser(ctx context.Context, id uuid.UUID, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}
	if req.IsEmpty() {
		return nil, apperror.Validation("no fields to update")
	}

	patch := store.Patch{}

	if req.Username != nil {
		existing, err := us.userRepo.FindByUsername(ctx, *req.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, apperror.Conflict(apperror.MsgUsernameTaken)
		}
		patch[entity.UserFieldUsername] = *req.Username
	}

	if req.Password != nil {
		hash, err := us.hasher.Hash(*req.Password)
		if err != nil {
			us.log.Error("Failed to hash password", zap.Error(err))
			return nil, apperror.Internal(apperror.MsgErrorUpdatingRecord, err)
		}
		patch[entity.UserFieldPassword] = hash
	}

	if req.Role != nil {
		patch[entity.UserFieldRole] = *req.Role
	}
	if req.AccountName != nil {
		patch[entity.UserFieldAccountName] = *req.AccountName
	}
	if req.Phone != nil {
		patch[entity.UserFieldPhone] = *req.Phone
	}
	if req.Description != nil {
		patch[entity.UserFieldDescription] = *req.Description
	}
	if req.IsActive != nil {
		patch[entity.UserFieldIsActive] = *req.IsActive
	}

	updated, err := us.userRepo.Update(ctx, id, patch)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindConflict {
			return nil, apperror.Conflict(apperror.MsgUsernameTaken).WithCause(err)
		}
		return nil, err
	}

	us.log.Info("User updated", zap.String("user_id", id.String()))

	resp := response.UserToResponse(updated)
	return &resp, nil
}

func (us *userService) DeleteUser(ctx context.Context, id uuid.UUID) (*response.UserResponse, error) {
	removed, err := us.userRepo.Remove(ctx, id)
	if err != nil {
		return nil, err
	}

	us.log.Info("User deleted", zap.String("user_id", id.String()))

	resp := response.UserToResponse(removed)
	return &resp, nil
}

func (us *userService) ReleaseDevice(ctx context.Context, id uuid.UUID) (*response.UserResponse, error) {
	if _, err := us.userRepo.ReleaseDevice(ctx, id, ""); err != nil {
		return nil, err
	}

	us.log.Info("Device binding released", zap.String("user_id", id.String()))
	return us.GetUser(ctx, id)
}
