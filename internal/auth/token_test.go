package auth

import (
	"strings"
	"testing"
	"time"

	"memories/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: models.RoleUser}
}

func TestIssueAndVerify(t *testing.T) {
	tm, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := tm.Issue(testUser())
	require.NoError(t, err)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Equal(t, Identity{UserID: "u1", Name: "Ana", Role: models.RoleUser}, claims.Identity())
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	issuer, _ := NewTokenManager("secret-a", time.Hour)
	verifier, _ := NewTokenManager("secret-b", time.Hour)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tm, _ := NewTokenManager("test-secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := tm.Issue(testUser())
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsOtherAlgorithm(t *testing.T) {
	tm, _ := NewTokenManager("test-secret", time.Hour)

	claims := &Claims{
		UserID: "u1",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.Verify(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm, _ := NewTokenManager("test-secret", time.Hour)

	_, err := tm.Verify("")
	assert.ErrorIs(t, err, ErrTokenMissing)

	_, err = tm.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewTokenManagerValidation(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenManager("secret", 0)
	assert.Error(t, err)
}

func TestExtractBearer(t *testing.T) {
	token, err := ExtractBearer("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearer("")
	assert.ErrorIs(t, err, ErrTokenMissing)

	for _, header := range []string{"abc.def.ghi", "Basic dXNlcjpwdw==", "Bearer ", "bearer abc"} {
		_, err = ExtractBearer(header)
		assert.ErrorIs(t, err, ErrMalformedBearer, header)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.False(t, strings.Contains(hash, "hunter22"))

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("not-a-hash", "hunter22"))
}
