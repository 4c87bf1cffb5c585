package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stemsi/learnhub-backend/internal/config"
)

func testAuthService() *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	})
}

func TestLearnerTokenRoundTrip(t *testing.T) {
	svc := testAuthService()
	id := uuid.New()

	token, err := svc.GenerateLearnerToken(id, "ana@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeLearner, claims.TokenType)
	assert.Equal(t, "ana@example.com", claims.Email)

	got, err := claims.LearnerUUID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestAdminTokenCarriesPermissions(t *testing.T) {
	svc := testAuthService()

	token, err := svc.GenerateAdminToken(7, 1, "ops@example.com", []string{"dashboards:read"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAdmin, claims.TokenType)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, []string{"dashboards:read"}, claims.Permissions)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := testAuthService()

	other := NewAuthService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour})
	foreign, err := other.GenerateLearnerToken(uuid.New(), "x@example.com")
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
		TokenType:        TokenTypeLearner,
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{TokenType: TokenTypeAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	svc := testAuthService()

	hash, err := svc.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NoError(t, svc.CheckPassword(hash, "s3cret-pass"))
	assert.ErrorIs(t, svc.CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}
