package repository

import (
	"context"
	"errors"
	"time"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/query"
	"admin-backend/internal/data/store"
	"admin-backend/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserRepository interface {
	CRUDRepository[entity.User]
	// FindByID excludes the password hash.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// FindByUsername returns the full record, password hash included.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	// FindBound returns the user only while id is bound to deviceID.
	FindBound(ctx context.Context, id uuid.UUID, deviceID string) (*entity.User, error)
	// BindDevice sets deviceId and requestedAt if the account is unbound or
	// already bound to deviceID, atomically. Otherwise DEVICE_CONFLICT.
	BindDevice(ctx context.Context, id uuid.UUID, deviceID string, at time.Time) (*entity.User, error)
	// ReleaseDevice clears the binding. With a non-empty expectedDeviceID it
	// only clears while the binding still equals it and reports false otherwise.
	ReleaseDevice(ctx context.Context, id uuid.UUID, expectedDeviceID string) (bool, error)
}

type userRepository struct {
	*crudRepository[entity.User, *entity.User]
}

func NewUserRepository(s store.Store[entity.User], timeout time.Duration, log *zap.Logger) UserRepository {
	return &userRepository{
		crudRepository: newCRUDRepository[entity.User](s, timeout, log, nil),
	}
}

func (ur *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return ur.FindOne(ctx, query.Where(entity.FieldID, query.EQ, id.String()), nil, entity.PublicUser)
}

func (ur *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return ur.FindOne(ctx, query.Where(entity.UserFieldUsername, query.EQ, username), nil, entity.Projection{})
}

func (ur *userRepository) FindBound(ctx context.Context, id uuid.UUID, deviceID string) (*entity.User, error) {
	if deviceID == "" {
		return nil, nil
	}
	pred := query.Where(entity.FieldID, query.EQ, id.String()).
		And(entity.UserFieldDeviceID, query.EQ, deviceID)
	return ur.FindOne(ctx, pred, nil, entity.PublicUser)
}

func (ur *userRepository) BindDevice(ctx context.Context, id uuid.UUID, deviceID string, at time.Time) (*entity.User, error) {
	ctx, cancel := ur.withTimeout(ctx)
	defer cancel()

	at = at.UTC()
	user, err := ur.store.UpdateIf(ctx, id,
		store.Guard{Field: entity.UserFieldDeviceID, Value: deviceID},
		store.Patch{
			entity.UserFieldDeviceID:    deviceID,
			entity.UserFieldRequestedAt: at,
			entity.FieldUpdatedAt:       at,
		})
	if errors.Is(err, store.ErrGuardRejected) {
		ur.log.Warn("Device binding rejected", zap.String("user_id", id.String()))
		return nil, apperror.DeviceConflict().WithCause(err)
	}
	if err != nil {
		return nil, ur.storeError("bind device", apperror.MsgErrorUpdatingRecord, err, zap.String("id", id.String()))
	}
	return user, nil
}

func (ur *userRepository) ReleaseDevice(ctx context.Context, id uuid.UUID, expectedDeviceID string) (bool, error) {
	ctx, cancel := ur.withTimeout(ctx)
	defer cancel()

	patch := store.Patch{
		entity.UserFieldDeviceID: nil,
		entity.FieldUpdatedAt:    ur.now(),
	}

	var err error
	if expectedDeviceID == "" {
		_, err = ur.store.UpdateByID(ctx, id, patch)
	} else {
		_, err = ur.store.UpdateIf(ctx, id, store.Guard{Field: entity.UserFieldDeviceID, Value: expectedDeviceID}, patch)
	}

	if errors.Is(err, store.ErrGuardRejected) {
		return false, nil
	}
	if err != nil {
		return false, ur.storeError("release device", apperror.MsgErrorUpdatingRecord, err, zap.String("id", id.String()))
	}
	return true, nil
}
