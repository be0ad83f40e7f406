package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token signature invalid")
)

// Payload is what access and refresh tokens carry.
type Payload struct {
	UserID    uuid.UUID
	Role      string
	DeviceID  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims embeds the registered claims; userId lives in the subject.
type Claims struct {
	jwt.RegisteredClaims
	Role     string `json:"role"`
	DeviceID string `json:"deviceId"`
}

type TokenIssuer interface {
	Sign(payload Payload, secret []byte, ttl time.Duration) (string, error)
	// Verify returns one of ErrTokenExpired, ErrTokenMalformed or ErrTokenBadSignature on failure.
	Verify(token string, secret []byte) (Payload, error)
}

type jwtIssuer struct {
	now func() time.Time
}

func NewTokenIssuer() TokenIssuer {
	return &jwtIssuer{now: time.Now}
}

// Sign ignores payload.IssuedAt and payload.ExpiresAt; both are derived from the clock and ttl.
func (i *jwtIssuer) Sign(payload Payload, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("empty signing secret")
	}

	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   payload.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:     payload.Role,
		DeviceID: payload.DeviceID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (i *jwtIssuer) Verify(tokenString string, secret []byte) (Payload, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Payload{}, classify(err)
	}
	if !token.Valid {
		return Payload{}, ErrTokenMalformed
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: subject is not a uuid", ErrTokenMalformed)
	}

	payload := Payload{
		UserID:   userID,
		Role:     claims.Role,
		DeviceID: claims.DeviceID,
	}
	if claims.IssuedAt != nil {
		payload.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Time
	}
	return payload, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrTokenBadSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
