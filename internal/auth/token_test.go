package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_GenerateParse(t *testing.T) {
	tm := NewTokenManager("secret", "userdesk", 0)

	tok, err := tm.Generate("sid-1", 42)
	require.NoError(t, err)

	sid, uid, err := tm.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", sid)
	assert.Equal(t, int64(42), uid)
}

func TestTokenManager_RejectsOtherSecret(t *testing.T) {
	tok, err := NewTokenManager("secret-a", "userdesk", 0).Generate("sid", 1)
	require.NoError(t, err)

	_, _, err = NewTokenManager("secret-b", "userdesk", 0).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsTampering(t *testing.T) {
	tm := NewTokenManager("secret", "userdesk", 0)
	tok, err := tm.Generate("sid", 1)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ID: "sid", Subject: "2", Issuer: "userdesk"}).
		SignedString([]byte("guess"))
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, _, err = tm.Parse(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsWrongIssuerAndAlg(t *testing.T) {
	tm := NewTokenManager("secret", "userdesk", 0)

	other, err := NewTokenManager("secret", "someone-else", 0).Generate("sid", 1)
	require.NoError(t, err)
	_, _, err = tm.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{ID: "sid", Subject: "1", Issuer: "userdesk"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, _, err = tm.Parse(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expiry(t *testing.T) {
	tm := NewTokenManager("secret", "userdesk", time.Millisecond)
	tok, err := tm.Generate("sid", 1)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, _, err = tm.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := NewTokenManager("secret", "userdesk", 0)
	for _, v := range []string{"", "abc", "a.b.c"} {
		_, _, err := tm.Parse(v)
		assert.ErrorIs(t, err, ErrInvalidToken, v)
	}
}
