package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	token, exp, err := svc.GenerateAccessToken("alice")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.UserID)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	other := NewJWTService(DefaultJWTConfig("other"))

	foreign, _, err := other.GenerateAccessToken("alice")
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.Error(t, err)

	expired := NewJWTService(DefaultJWTConfig("secret"))
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	old, _, err := expired.GenerateAccessToken("alice")
	require.NoError(t, err)
	_, err = svc.ValidateToken(old)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
