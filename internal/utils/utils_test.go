package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	at, err := NewAccessToken("s3cret", "user-1", "jane@example.com", "admin", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)
	require.WithinDuration(t, time.Now().Add(time.Hour), at.Exp, 5*time.Second)

	claims, err := ParseAccessToken("s3cret", at.Token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "jane@example.com", claims.Email)
	require.Equal(t, "admin", claims.Role)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	t.Parallel()

	good, err := NewAccessToken("s3cret", "user-1", "a@b.io", "user", time.Hour)
	require.NoError(t, err)

	expired, err := NewAccessToken("s3cret", "user-1", "a@b.io", "user", -time.Minute)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	noneRaw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	noExpRaw, err := noExp.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	cases := map[string]struct{ secret, raw string }{
		"wrong secret": {"other", good.Token},
		"expired":      {"s3cret", expired.Token},
		"alg none":     {"s3cret", noneRaw},
		"missing exp":  {"s3cret", noExpRaw},
		"garbage":      {"s3cret", "not.a.jwt"},
		"empty":        {"s3cret", ""},
	}
	for name, tc := range cases {
		_, err := ParseAccessToken(tc.secret, tc.raw)
		require.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestPassword_HashAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash)

	require.True(t, VerifyPassword(hash, "hunter22"))
	require.False(t, VerifyPassword(hash, "hunter23"))
	require.False(t, VerifyPassword("not-a-hash", "hunter22"))

	again, err := HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, hash, again, "salted hashes must differ")
}
