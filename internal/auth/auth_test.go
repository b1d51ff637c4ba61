package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"counseling-booking-api/internal/model"
)

const secret = "test-secret"

func TestBcrypt(t *testing.T) {
	b := NewBcrypt(bcrypt.MinCost)
	h, err := b.Hash("hunter22")
	require.NoError(t, err)
	assert.True(t, b.Verify(h, "hunter22"))
	assert.False(t, b.Verify(h, "hunter23"))

	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(99).Cost)
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := MakeToken("u1", model.RoleCounselor, secret, time.Hour)
	require.NoError(t, err)

	c, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, model.RoleCounselor, c.Role)
}

func TestTokenRejected(t *testing.T) {
	expired, err := MakeToken("u1", model.RoleClient, secret, -time.Minute)
	require.NoError(t, err)
	other, err := MakeToken("u1", model.RoleClient, "other-secret", time.Hour)
	require.NoError(t, err)
	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "u1", Role: "root",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1", Role: model.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":   expired,
		"signature": other,
		"role":      badRole,
		"alg none":  none,
		"garbage":   "not.a.jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(tok, secret)
			assert.Error(t, err)
		})
	}
}
