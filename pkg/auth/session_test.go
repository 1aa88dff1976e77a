package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, hash, err := GenerateToken()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(token, TokenPrefix))
	assert.Equal(t, HashToken(token), hash)
	assert.NoError(t, ValidateTokenFormat(token))
}

func TestGenerateTokenUnique(t *testing.T) {
	token1, _, err := GenerateToken()
	require.NoError(t, err)
	token2, _, err := GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, token1, token2)
}

func TestValidateTokenFormat(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"missing prefix", "bearer_abc123", true},
		{"empty after prefix", "portal_", true},
		{"invalid base64", "portal_!!!", true},
		{"valid", "portal_YWJjZGVmZ2hpamtsbW5vcA", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTokenFormat(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSessionExpired(t *testing.T) {
	session := &Session{ExpiresAt: time.Now().Add(time.Hour)}
	assert.False(t, session.Expired(time.Now()))
	assert.True(t, session.Expired(time.Now().Add(2*time.Hour)))
}
