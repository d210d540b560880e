package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueToken(t *testing.T, secret, subject string, expiry time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func echoUserHandler() (http.Handler, *string) {
	var gotUser string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, &gotUser
}

func TestMiddlewareDisabled(t *testing.T) {
	v := NewVerifier("")
	assert.False(t, v.Enabled())

	handler, gotUser := echoUserHandler()
	rec := httptest.NewRecorder()
	v.Middleware(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, LocalUser, *gotUser)
}

func TestMiddlewareEnabled(t *testing.T) {
	const secret = "test-secret"
	v := NewVerifier(secret)
	require.True(t, v.Enabled())

	t.Run("ValidToken", func(t *testing.T) {
		handler, gotUser := echoUserHandler()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, secret, "user-42", time.Hour))

		rec := httptest.NewRecorder()
		v.Middleware(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-42", *gotUser)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		handler, _ := echoUserHandler()
		rec := httptest.NewRecorder()
		v.Middleware(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		handler, _ := echoUserHandler()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, "other-secret", "user-42", time.Hour))

		rec := httptest.NewRecorder()
		v.Middleware(handler).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		handler, _ := echoUserHandler()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, secret, "user-42", -time.Hour))

		rec := httptest.NewRecorder()
		v.Middleware(handler).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MalformedToken", func(t *testing.T) {
		handler, _ := echoUserHandler()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")

		rec := httptest.NewRecorder()
		v.Middleware(handler).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestVerifyNoSubject(t *testing.T) {
	const secret = "test-secret"
	v := NewVerifier(secret)

	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = v.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserIDFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, LocalUser, UserID(req.Context()))
}
