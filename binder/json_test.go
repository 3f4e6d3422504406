package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authsvc/binder"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func newJSONRequest(body, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("binds a valid body", func(t *testing.T) {
		t.Parallel()
		var got loginBody
		err := binder.JSON()(newJSONRequest(`{"email":"ana@example.com","password":"pw"}`, "application/json"), &got)

		require.NoError(t, err)
		assert.Equal(t, loginBody{Email: "ana@example.com", Password: "pw"}, got)
	})

	t.Run("accepts charset parameter", func(t *testing.T) {
		t.Parallel()
		var got loginBody
		err := binder.JSON()(newJSONRequest(`{"email":"ana@example.com"}`, "application/json; charset=utf-8"), &got)

		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", got.Email)
	})

	t.Run("ignores unknown fields by default", func(t *testing.T) {
		t.Parallel()
		var got loginBody
		err := binder.JSON()(newJSONRequest(`{"email":"a@b.co","remember":true}`, "application/json"), &got)

		require.NoError(t, err)
		assert.Equal(t, "a@b.co", got.Email)
	})

	t.Run("strict mode rejects unknown fields", func(t *testing.T) {
		t.Parallel()
		var got loginBody
		err := binder.JSON(binder.WithStrictFields())(newJSONRequest(`{"email":"a@b.co","remember":true}`, "application/json"), &got)

		require.Error(t, err)
		assert.ErrorIs(t, err, binder.ErrInvalidJSON)
		assert.Contains(t, err.Error(), "unknown field")
	})

	t.Run("missing content type", func(t *testing.T) {
		t.Parallel()
		var got loginBody
		err := binder.JSON()(newJSONRequest(`{}`, ""), &got)

		assert.ErrorIs(t, err, binder.ErrMissingContentType)
	})

	t.Run("wrong content type", func(t *testing.T) {
		t.Parallel()
		var got loginBody
		err := binder.JSON()(newJSONRequest(`email=a@b.co`, "application/x-www-form-urlencoded"), &got)

		require.Error(t, err)
		assert.ErrorIs(t, err, binder.ErrUnsupportedMediaType)
		assert.Contains(t, err.Error(), "application/x-www-form-urlencoded")
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		var got loginBody
		err := binder.JSON()(newJSONRequest(``, "application/json"), &got)

		require.Error(t, err)
		assert.ErrorIs(t, err, binder.ErrInvalidJSON)
		assert.Contains(t, err.Error(), "empty body")
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		var got loginBody
		err := binder.JSON()(newJSONRequest(`{email:"a@b.co"}`, "application/json"), &got)

		require.Error(t, err)
		assert.ErrorIs(t, err, binder.ErrInvalidJSON)
		assert.Contains(t, err.Error(), "invalid character")
	})

	t.Run("type mismatch", func(t *testing.T) {
		t.Parallel()
		var got loginBody
		err := binder.JSON()(newJSONRequest(`{"email":42}`, "application/json"), &got)

		require.Error(t, err)
		assert.ErrorIs(t, err, binder.ErrInvalidJSON)
		assert.Contains(t, err.Error(), "cannot unmarshal")
	})

	t.Run("trailing data", func(t *testing.T) {
		t.Parallel()
		var got loginBody
		err := binder.JSON()(newJSONRequest(`{"email":"a@b.co"}{"email":"c@d.co"}`, "application/json"), &got)

		require.Error(t, err)
		assert.ErrorIs(t, err, binder.ErrInvalidJSON)
		assert.Contains(t, err.Error(), "unexpected data after JSON object")
	})

	t.Run("body over the limit", func(t *testing.T) {
		t.Parallel()
		body := `{"email":"` + strings.Repeat("a", 64) + `@b.co"}`
		var got loginBody
		err := binder.JSON(binder.WithMaxBodyBytes(32))(newJSONRequest(body, "application/json"), &got)

		require.Error(t, err)
		assert.ErrorIs(t, err, binder.ErrBodyTooLarge)
	})
}
