package auth

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimsDecodeFromTokenPayload(t *testing.T) {
	// A standard ID-token payload: exp is a Unix timestamp number.
	payload := []byte(`{
		"iss": "https://auth.example.com",
		"sub": "user-1",
		"aud": "market-agent",
		"email": "user@example.com",
		"exp": 1767222000,
		"iat": 1767218400
	}`)

	var claims Claims
	require.NoError(t, json.Unmarshal(payload, &claims))
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.True(t, claims.Expiry.IsZero(), "expiry comes from the verified token, not the payload")
}

func TestClaimsExpired(t *testing.T) {
	assert.False(t, (&Claims{}).Expired(), "zero expiry never expires")
	assert.False(t, (&Claims{Expiry: time.Now().Add(time.Hour)}).Expired())
	assert.True(t, (&Claims{Expiry: time.Now().Add(-time.Hour)}).Expired())
}
