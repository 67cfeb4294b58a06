package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-key"

func newTestPair(t *testing.T, expiry time.Duration) (*JWTGenerator, *JWTValidator) {
	t.Helper()
	gen, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey:  testSecret,
		Issuer:     "spooltrack",
		Audience:   []string{"spooltrack-api"},
		ExpiryTime: expiry,
	})
	require.NoError(t, err)

	val, err := NewJWTValidator(JWTConfig{
		SecretKey: testSecret,
		Issuer:    "spooltrack",
		Audience:  []string{"spooltrack-api"},
	})
	require.NoError(t, err)
	return gen, val
}

func TestValidateToken_RoundTrip(t *testing.T) {
	gen, val := newTestPair(t, time.Hour)

	token, err := gen.GenerateToken("user-1", "user@example.com", []string{"admin"})
	require.NoError(t, err)

	claims, err := val.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestValidateToken_Expired(t *testing.T) {
	gen, val := newTestPair(t, -time.Minute)

	token, err := gen.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	_, err = val.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	gen, _ := newTestPair(t, time.Hour)

	other, err := NewJWTValidator(JWTConfig{SecretKey: "a-different-secret"})
	require.NoError(t, err)

	token, err := gen.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	gen, err := NewJWTGenerator(JWTGeneratorConfig{SecretKey: testSecret, Issuer: "someone-else"})
	require.NoError(t, err)
	_, val := newTestPair(t, time.Hour)

	token, err := gen.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	_, err = val.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_MissingUserID(t *testing.T) {
	gen, val := newTestPair(t, time.Hour)

	token, err := gen.GenerateToken("", "", nil)
	require.NoError(t, err)

	_, err = val.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, val := newTestPair(t, time.Hour)

	_, err := val.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)

	_, err = NewJWTGenerator(JWTGeneratorConfig{})
	assert.Error(t, err)
}
