package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accessSecret  = []byte("access-secret")
	refreshSecret = []byte("refresh-secret")
)

func TestSignVerify_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer()
	id := uuid.New()

	token, err := issuer.Sign(Payload{UserID: id, Role: "admin", DeviceID: "device-A"}, accessSecret, time.Minute)
	require.NoError(t, err)

	payload, err := issuer.Verify(token, accessSecret)
	require.NoError(t, err)
	assert.Equal(t, id, payload.UserID)
	assert.Equal(t, "admin", payload.Role)
	assert.Equal(t, "device-A", payload.DeviceID)
	assert.True(t, payload.ExpiresAt.After(payload.IssuedAt))
}

func TestVerify_WrongSecretIsBadSignature(t *testing.T) {
	issuer := NewTokenIssuer()
	token, err := issuer.Sign(Payload{UserID: uuid.New()}, refreshSecret, time.Minute)
	require.NoError(t, err)

	_, err = issuer.Verify(token, accessSecret)
	assert.ErrorIs(t, err, ErrTokenBadSignature)
}

func TestVerify_Expired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	issuer := &jwtIssuer{now: func() time.Time { return past }}
	token, err := issuer.Sign(Payload{UserID: uuid.New()}, accessSecret, time.Minute)
	require.NoError(t, err)

	_, err = NewTokenIssuer().Verify(token, accessSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Malformed(t *testing.T) {
	_, err := NewTokenIssuer().Verify("not.a.jwt", accessSecret)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = NewTokenIssuer().Verify("", accessSecret)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(accessSecret)
	require.NoError(t, err)

	_, err = NewTokenIssuer().Verify(token, accessSecret)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_SubjectMustBeUUID(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(accessSecret)
	require.NoError(t, err)

	_, err = NewTokenIssuer().Verify(token, accessSecret)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestSign_TokensAreUnique(t *testing.T) {
	issuer := NewTokenIssuer()
	p := Payload{UserID: uuid.New(), DeviceID: "d"}
	a, err := issuer.Sign(p, accessSecret, time.Minute)
	require.NoError(t, err)
	b, err := issuer.Sign(p, accessSecret, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
