package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = AuthConfig{AccessSecret: "unit-test-secret", AccessExpire: 3600}

func TestGenerateAndParse(t *testing.T) {
	res, err := GenerateToken("o_user_1", testCfg)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Greater(t, res.ExpireAt, time.Now().Unix())

	claims, err := ParseToken(res.Token, testCfg.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, "o_user_1", claims.OpenID)
}

func TestParseWrongSecret(t *testing.T) {
	res, err := GenerateToken("o_user_1", testCfg)
	require.NoError(t, err)

	_, err = ParseToken(res.Token, "other-secret")
	assert.Error(t, err)
	assert.False(t, IsTokenExpired(err))
}

func TestParseExpired(t *testing.T) {
	res, err := generateToken("o_user_1", testCfg, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = ParseToken(res.Token, testCfg.AccessSecret)
	require.Error(t, err)
	assert.True(t, IsTokenExpired(err))
}

func TestGenerateInvalidConfig(t *testing.T) {
	_, err := GenerateToken("", testCfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = GenerateToken("o_user_1", AuthConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
