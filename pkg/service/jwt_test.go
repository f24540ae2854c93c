package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "it-inventory/pkg/errors"
)

func TestJWT_RoundTrip(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		t.Run(alg, func(t *testing.T) {
			svc, err := NewJWTService("secret", alg, 30*time.Minute, zap.NewNop())
			require.NoError(t, err)

			token, err := svc.GenerateToken("admin@example.com")
			require.NoError(t, err)

			claims, err := svc.ValidateToken(token)
			require.NoError(t, err)
			assert.Equal(t, "admin@example.com", claims.Subject)
		})
	}
}

func TestJWT_UnsupportedAlgorithm(t *testing.T) {
	_, err := NewJWTService("secret", "RS256", time.Minute, zap.NewNop())
	assert.ErrorIs(t, err, apperrors.ErrInvalidSigningMethod)
}

func TestJWT_Expired(t *testing.T) {
	svc, err := NewJWTService("secret", "HS256", time.Minute, zap.NewNop())
	require.NoError(t, err)

	impl := svc.(*jwtService)
	impl.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.GenerateToken("user@example.com")
	require.NoError(t, err)

	impl.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestJWT_WrongSecretOrAlgorithm(t *testing.T) {
	issuer, err := NewJWTService("secret-a", "HS256", time.Minute, zap.NewNop())
	require.NoError(t, err)
	token, err := issuer.GenerateToken("user@example.com")
	require.NoError(t, err)

	otherSecret, err := NewJWTService("secret-b", "HS256", time.Minute, zap.NewNop())
	require.NoError(t, err)
	_, err = otherSecret.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	otherAlg, err := NewJWTService("secret-a", "HS512", time.Minute, zap.NewNop())
	require.NoError(t, err)
	_, err = otherAlg.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSigningMethod)

	_, err = issuer.ValidateToken("garbage")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
