package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	m := NewManager("secret", "meeting-reporter", time.Hour)

	sessionID, token, expiresAt, err := m.NewSession()
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.Equal(t, "meeting-reporter", claims.Issuer)
}

func TestSessionToken_WrongSecret(t *testing.T) {
	token, _, err := NewManager("secret", "meeting-reporter", time.Hour).GenerateSessionToken("s1")
	require.NoError(t, err)

	_, err = NewManager("other", "meeting-reporter", time.Hour).ValidateSessionToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSessionToken_WrongIssuer(t *testing.T) {
	token, _, err := NewManager("secret", "someone-else", time.Hour).GenerateSessionToken("s1")
	require.NoError(t, err)

	_, err = NewManager("secret", "meeting-reporter", time.Hour).ValidateSessionToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSessionToken_Expired(t *testing.T) {
	m := NewManager("secret", "meeting-reporter", -time.Minute)
	token, _, err := m.GenerateSessionToken("s1")
	require.NoError(t, err)

	_, err = m.ValidateSessionToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionToken_Garbage(t *testing.T) {
	m := NewManager("secret", "meeting-reporter", time.Hour)
	_, err := m.ValidateSessionToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
