package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	for _, p := range []string{"pw1", "correct horse battery staple", "ünïcødé", strings.Repeat("x", MaxPasswordBytes)} {
		hash, err := h.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hash)
		assert.True(t, h.Verify(p, hash), "verify %q", p)
	}
}

func TestPasswordHasher_RejectsOtherPlaintexts(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("pw1")
	require.NoError(t, err)

	for _, p := range []string{"", "pw", "pw2", "PW1", "pw1 ", " pw1"} {
		assert.False(t, h.Verify(p, hash), "verify %q", p)
	}
}

func TestPasswordHasher_SaltedPerCall(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestPasswordHasher_TooLong(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	long := strings.Repeat("a", MaxPasswordBytes+1)

	_, err := h.Hash(long)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	hash, err := h.Hash(long[:MaxPasswordBytes])
	require.NoError(t, err)
	assert.False(t, h.Verify(long, hash))
}

func TestPasswordHasher_EmptyOrMalformedHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("pw", ""))
	assert.False(t, h.Verify("pw", "not-a-bcrypt-hash"))
}

func TestNewPasswordHasher_CostBounds(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewPasswordHasher(12).cost)
}
