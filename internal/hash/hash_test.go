package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt_HashAndCheck(t *testing.T) {
	t.Parallel()

	b := NewBcrypt(bcrypt.MinCost)
	h, err := b.HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", h)

	assert.True(t, b.CheckPassword(h, "secret123"))
	assert.False(t, b.CheckPassword(h, "secret124"))
	assert.False(t, b.CheckPassword("not-a-hash", "secret123"))
}

func TestNewBcrypt_ClampsCost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(0).Cost)
	assert.Equal(t, bcrypt.MinCost, NewBcrypt(1).Cost)
	assert.Equal(t, bcrypt.MaxCost, NewBcrypt(99).Cost)
}
