package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

func TestGenerateAndValidate(t *testing.T) {
	userID := uuid.New()

	tokenString, err := GenerateToken(testSecret, "test-issuer", userID, RoleCoordinator, 24)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := ValidateToken(tokenString, testSecret)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RoleCoordinator, claims.Role)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, claims.IssuedAt.Time, claims.NotBefore.Time)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	userID := uuid.New()

	token1, err := GenerateToken(testSecret, "test-issuer", userID, RoleViewer, 24)
	require.NoError(t, err)
	token2, err := GenerateToken(testSecret, "test-issuer", userID, RoleViewer, 24)
	require.NoError(t, err)

	claims1, err := ValidateToken(token1, testSecret)
	require.NoError(t, err)
	claims2, err := ValidateToken(token2, testSecret)
	require.NoError(t, err)

	assert.NotEqual(t, claims1.ID, claims2.ID, "Each token should have a unique ID")
}

func TestGenerateToken_Expiry(t *testing.T) {
	for _, hours := range []int{1, 24, 168} {
		tokenString, err := GenerateToken(testSecret, "test-issuer", uuid.New(), RoleAdmin, hours)
		require.NoError(t, err)

		claims, err := ValidateToken(tokenString, testSecret)
		require.NoError(t, err)

		expected := time.Now().Add(time.Duration(hours) * time.Hour)
		assert.WithinDuration(t, expected, claims.ExpiresAt.Time, 5*time.Second)
	}
}

func TestValidateToken_Rejections(t *testing.T) {
	valid, err := GenerateToken(testSecret, "test-issuer", uuid.New(), RoleAdmin, 24)
	require.NoError(t, err)
	expired, err := GenerateToken(testSecret, "test-issuer", uuid.New(), RoleAdmin, -1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"expired", expired, testSecret},
		{"wrong secret", valid, "wrong-secret-key-67890"},
		{"empty secret", valid, ""},
		{"garbage", "not.a.valid.token.string", testSecret},
		{"tampered", valid[:len(valid)-10] + "tampered!!", testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestValidateToken_MissingClaims(t *testing.T) {
	standardClaims := jwt.RegisteredClaims{
		Issuer:    "test-issuer",
		Subject:   "test-subject",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, standardClaims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := ValidateToken(tokenString, testSecret)

	assert.ErrorIs(t, err, ErrMissingClaims)
	assert.Nil(t, claims)
}

func TestValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		UserID: uuid.New(),
		Role:   RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	validated, err := ValidateToken(tokenString, testSecret)

	assert.Error(t, err)
	assert.Nil(t, validated)
}
