package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restom/restom-backend/pkg/auth"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := auth.NewAccessToken(42, "9199999999", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := auth.Parse(token, "secret")
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.Sub)
	assert.Equal(t, "9199999999", claims.Phone)
	assert.Contains(t, claims.Audience, "restom-api")
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := auth.NewAccessToken(1, "555", "secret", time.Hour)
	require.NoError(t, err)

	_, err = auth.Parse(token, "other-secret")
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := auth.NewAccessToken(1, "555", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = auth.Parse(token, "secret")
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := auth.Parse("not.a.token", "secret")
	assert.Error(t, err)
}
