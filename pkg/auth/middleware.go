package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/config"
)

// Middleware validates bearer tokens on API requests.
type Middleware struct {
	signingKey []byte
	issuer     string
	logger     *zap.Logger
}

// NewMiddleware creates an auth middleware from the auth configuration.
func NewMiddleware(cfg *config.AuthConfig, logger *zap.Logger) *Middleware {
	return &Middleware{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		logger:     logger.Named("auth"),
	}
}

// Enabled reports whether a signing key is configured.
func (m *Middleware) Enabled() bool {
	return len(m.signingKey) > 0
}

// RequireAuth validates the Authorization bearer token and stores its claims
// in the request context. With no signing key configured, requests pass
// through unauthenticated.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next(w, r)
			return
		}

		claims, err := m.validateRequest(r)
		if err != nil {
			m.logger.Debug("rejected request", zap.Error(err), zap.String("path", r.URL.Path))
			m.unauthorized(w, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

func (m *Middleware) validateRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenString == "" {
		return nil, fmt.Errorf("missing bearer token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.signingKey, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}
