package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authsvc/pkg/jwt"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestService_IssueAndVerify(t *testing.T) {
	t.Parallel()

	t.Run("round trips the subject", func(t *testing.T) {
		t.Parallel()
		svc := jwt.NewFromString("secret")

		token, err := svc.Issue("user-1")
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(token, "."))

		subject, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", subject)
	})

	t.Run("expires after seven days by default", func(t *testing.T) {
		t.Parallel()
		c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
		svc := jwt.NewFromString("secret", jwt.WithClock(c.now))

		token, err := svc.Issue("user-1")
		require.NoError(t, err)

		claims, err := svc.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, c.t.Add(7*24*time.Hour), claims.ExpiresAt.Time.UTC())
		assert.Equal(t, jwt.DefaultTTL, svc.TTL())

		c.t = c.t.Add(7*24*time.Hour - time.Minute)
		_, err = svc.Verify(token)
		require.NoError(t, err)

		c.t = c.t.Add(2 * time.Minute)
		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("custom ttl", func(t *testing.T) {
		t.Parallel()
		c := &clock{t: time.Now()}
		svc := jwt.NewFromString("secret", jwt.WithClock(c.now), jwt.WithTTL(time.Hour))

		token, err := svc.Issue("user-1")
		require.NoError(t, err)

		c.t = c.t.Add(2 * time.Hour)
		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		t.Parallel()
		token, err := jwt.NewFromString("one").Issue("user-1")
		require.NoError(t, err)

		_, err = jwt.NewFromString("two").Verify(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("rejects a tampered payload", func(t *testing.T) {
		t.Parallel()
		svc := jwt.NewFromString("secret")
		token, err := svc.Issue("user-1")
		require.NoError(t, err)

		other, err := svc.Issue("user-2")
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		otherParts := strings.Split(other, ".")
		forged := parts[0] + "." + otherParts[1] + "." + parts[2]

		_, err = svc.Verify(forged)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("rejects malformed tokens", func(t *testing.T) {
		t.Parallel()
		svc := jwt.NewFromString("secret")
		for _, token := range []string{"abc", "a.b", "a.b.c", "not a token at all"} {
			_, err := svc.Verify(token)
			assert.ErrorIs(t, err, jwt.ErrInvalidToken, token)
		}
	})

	t.Run("empty token is missing", func(t *testing.T) {
		t.Parallel()
		_, err := jwt.NewFromString("secret").Verify("")
		assert.ErrorIs(t, err, jwt.ErrMissingToken)
	})

	t.Run("rejects other algorithms", func(t *testing.T) {
		t.Parallel()
		claims := gojwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = jwt.NewFromString("secret").Verify(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("requires expiry", func(t *testing.T) {
		t.Parallel()
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{Subject: "user-1"}).
			SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = jwt.NewFromString("secret").Verify(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("requires subject", func(t *testing.T) {
		t.Parallel()
		claims := gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))}
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = jwt.NewFromString("secret").Verify(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
		assert.ErrorIs(t, err, jwt.ErrMissingSubject)
	})

	t.Run("issue requires subject", func(t *testing.T) {
		t.Parallel()
		_, err := jwt.NewFromString("secret").Issue("")
		assert.ErrorIs(t, err, jwt.ErrMissingSubject)
	})

	t.Run("issuer is enforced when configured", func(t *testing.T) {
		t.Parallel()
		token, err := jwt.NewFromString("secret", jwt.WithIssuer("other")).Issue("user-1")
		require.NoError(t, err)

		_, err = jwt.NewFromString("secret", jwt.WithIssuer("authsvc")).Verify(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)

		subject, err := jwt.NewFromString("secret", jwt.WithIssuer("other")).Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", subject)
	})
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
		err    error
	}{
		{name: "valid bearer header", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "scheme is case insensitive", header: "bearer abc", want: "abc"},
		{name: "missing header", header: "", err: jwt.ErrMissingToken},
		{name: "scheme without token", header: "Bearer", err: jwt.ErrMissingToken},
		{name: "scheme with blank token", header: "Bearer   ", err: jwt.ErrMissingToken},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", err: jwt.ErrMissingToken},
		{name: "token without scheme", header: "abc.def.ghi", err: jwt.ErrMissingToken},
		{name: "extra segments", header: "Bearer a b", err: jwt.ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/verify", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			got, err := jwt.BearerToken(r)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
