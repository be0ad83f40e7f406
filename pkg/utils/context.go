package utils

import (
	"context"

	"github.com/google/uuid"
)

// DeviceIDHeader carries the client device identifier on every auth call.
const DeviceIDHeader = "X-Device-Id"

type contextKey string

const identityKey contextKey = "identity"

// Identity is the verified caller attached by the auth middleware.
type Identity struct {
	UserID   uuid.UUID
	Role     string
	DeviceID string
}

func SetIdentityContext(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func GetIdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	identity, ok := GetIdentityFromContext(ctx)
	if !ok || identity.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return identity.UserID, true
}
