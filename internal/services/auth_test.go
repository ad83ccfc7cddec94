package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jeopardy-trainer-go/internal/models"
)

func testTokens() TokenService {
	return TokenService{
		Secret:     []byte("test-secret"),
		Issuer:     "jeopardy-trainer",
		AccessTTL:  time.Hour,
		SessionTTL: 30 * 24 * time.Hour,
	}
}

func TestPasswordHashing(t *testing.T) {
	tokens := testTokens()
	hash, err := tokens.HashPassword("correct horse")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")
	assert.True(t, tokens.VerifyPassword("correct horse", hash))
	assert.False(t, tokens.VerifyPassword("wrong horse", hash))
	assert.False(t, tokens.VerifyPassword("correct horse", "$argon2id$v=19$garbage"))
}

func TestVerifyLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, testTokens().VerifyPassword("hunter22", string(legacy)))
	assert.False(t, testTokens().VerifyPassword("hunter23", string(legacy)))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tokens := testTokens()
	user := models.User{ID: "u-1", Username: "alex", Role: models.RoleAdmin}
	signed, exp, err := tokens.CreateAccessToken(user, "sess-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tokens.ParseAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alex", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestParseAccessTokenRejects(t *testing.T) {
	tokens := testTokens()
	user := models.User{ID: "u-1", Role: models.RoleUser}

	other := tokens
	other.Secret = []byte("other-secret")
	forged, _, err := other.CreateAccessToken(user, "s")
	require.NoError(t, err)
	_, err = tokens.ParseAccessToken(forged)
	assert.Error(t, err)

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": tokens.Issuer, "sub": "u-1", "sid": "s", "typ": "refresh",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := refresh.SignedString(tokens.Secret)
	require.NoError(t, err)
	_, err = tokens.ParseAccessToken(signed)
	assert.Error(t, err)

	expired := tokens
	expired.AccessTTL = -time.Minute
	old, _, err := expired.CreateAccessToken(user, "s")
	require.NoError(t, err)
	_, err = tokens.ParseAccessToken(old)
	assert.Error(t, err)
}
