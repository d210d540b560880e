// Package auth provides optional bearer token authentication for the API
// server. Without a configured secret, every request is attributed to a
// single local user, which is the right behavior for a personal
// deployment on localhost.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// LocalUser is the user ID used when authentication is disabled.
const LocalUser = "local"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

type contextKey struct{}

// UserID returns the authenticated user ID stored in ctx, or LocalUser
// when none is present.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return LocalUser
}

// WithUserID returns a context carrying the given user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// Verifier validates HS256 bearer tokens. A zero secret disables
// verification entirely.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier. An empty secret disables authentication.
func NewVerifier(secret string) *Verifier {
	if secret == "" {
		return &Verifier{}
	}
	return &Verifier{secret: []byte(secret)}
}

// Enabled reports whether token verification is active.
func (v *Verifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify parses and validates a token, returning the subject claim.
func (v *Verifier) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject claim", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Middleware resolves the request's user and stores it in the request
// context. With verification disabled, every request runs as LocalUser;
// otherwise a valid bearer token is required.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !v.Enabled() {
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), LocalUser)))
			return
		}

		token, err := bearerToken(r)
		if err != nil {
			unauthorized(w, err)
			return
		}
		userID, err := v.Verify(token)
		if err != nil {
			unauthorized(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
