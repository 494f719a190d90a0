package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type body struct {
	Username string `json:"username"`
}

func decode(t *testing.T, raw string) (body, error) {
	t.Helper()
	var b body
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
	err := Decode(httptest.NewRecorder(), r, &b)
	return b, err
}

func TestDecode(t *testing.T) {
	b, err := decode(t, `{"username":"alice"}`)
	require.NoError(t, err)
	assert.Equal(t, "alice", b.Username)

	_, err = decode(t, ``)
	assert.ErrorIs(t, err, ErrEmptyBody)

	for _, raw := range []string{`{"username":"a","extra":1}`, `{"username":`, `{"username":"a"}{}`, `{"username":"a"} x`, `[1]`} {
		_, err := decode(t, raw)
		assert.Error(t, err, raw)
		assert.NotErrorIs(t, err, ErrEmptyBody, raw)
	}
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusConflict, "username taken")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, map[string]any{"ok": false, "error": "username taken"}, out)
}
