package identity

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cerviguard/console/pkg/handlers"
)

// SessionCookie is the cookie carrying the session token for browser clients.
const SessionCookie = "cerviguard_session"

// Middleware returns middleware that verifies the request's session token
// and attaches the resulting User to the context. Requests without a valid
// token are rejected with 401.
func Middleware(cfg *Config, logger *slog.Logger) func(http.Handler) http.Handler {
	log := logger.With("system", "identity")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				handlers.RespondError(w, log, http.StatusUnauthorized, ErrUnauthenticated)
				return
			}

			user, err := verifyToken(cfg, token)
			if err != nil {
				log.Warn("session token rejected", "error", err)
				handlers.RespondError(w, log, http.StatusUnauthorized, ErrUnauthenticated)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin wraps a handler so only admin users reach it.
func RequireAdmin(logger *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := FromContext(r.Context())
		if !ok {
			handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthenticated)
			return
		}
		if !user.IsAdmin() {
			handlers.RespondError(w, logger, http.StatusForbidden, ErrForbidden)
			return
		}
		next(w, r)
	}
}

func extractToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func verifyToken(cfg *Config, token string) (User, error) {
	claims := jwt.MapClaims{}

	_, err := jwt.ParseWithClaims(
		token, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return User{}, fmt.Errorf("parse session token: %w", err)
	}

	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)

	if sub == "" || username == "" {
		return User{}, fmt.Errorf("session token missing identity claims")
	}

	u := User{ID: sub, Username: username, Role: Role(role)}
	if !u.Role.Valid() {
		u.Role = RoleUser
	}
	return u, nil
}
