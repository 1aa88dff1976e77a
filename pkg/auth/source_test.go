package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSourceMatch(t *testing.T) {
	source := NewStaticSource(DemoAccounts)

	identity, err := source.Authenticate(context.Background(), "student@example.com", "student123")
	require.NoError(t, err)
	assert.Equal(t, "3", identity.Subject)
	assert.Equal(t, "Student User", identity.Name)
	assert.Equal(t, "student", identity.Role)
	assert.Equal(t, SourceDemo, identity.Source)
}

func TestStaticSourceWrongSecret(t *testing.T) {
	source := NewStaticSource(DemoAccounts)

	_, err := source.Authenticate(context.Background(), "student@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStaticSourceUnknownIdentifier(t *testing.T) {
	source := NewStaticSource(DemoAccounts)

	_, err := source.Authenticate(context.Background(), "nobody@example.com", "student123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDemoTableContents(t *testing.T) {
	// The demo table is fixed at build time
	require.Len(t, DemoAccounts, 3)
	roles := map[string]string{}
	for _, account := range DemoAccounts {
		roles[account.Identifier] = account.Role
	}
	assert.Equal(t, "admin", roles["admin@example.com"])
	assert.Equal(t, "staff", roles["staff@example.com"])
	assert.Equal(t, "student", roles["student@example.com"])
}
