package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"offboard/pkg/requestcontext"
)

// Claims is the identity carried by a validated token.
type Claims struct {
	ActorID  uuid.UUID
	Username string
	Role     string
}

// TokenValidator validates a bearer token and returns the caller's identity.
type TokenValidator interface {
	ValidateToken(tokenString string) (Claims, error)
}

// HMACValidator validates HS256 tokens signed with a shared key. Token
// issuance lives elsewhere; this service only consumes them.
type HMACValidator struct {
	key []byte
}

func NewHMACValidator(signingKey string) *HMACValidator {
	return &HMACValidator{key: []byte(signingKey)}
}

func (v *HMACValidator) ValidateToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, fmt.Errorf("invalid token claims")
	}

	sub, _ := mapClaims["sub"].(string)
	actorID, err := uuid.Parse(sub)
	if err != nil {
		return Claims{}, fmt.Errorf("parse subject: %w", err)
	}

	username, _ := mapClaims["username"].(string)
	role, _ := mapClaims["role"].(string)

	return Claims{ActorID: actorID, Username: username, Role: role}, nil
}

// RequireAuth rejects requests without a valid bearer token and injects the
// caller's identity into the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(r.Context(), "unauthorized - missing token",
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeAuthError(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeAuthError(w, "Invalid or expired token")
				return
			}

			ctx := requestcontext.WithActorID(r.Context(), claims.ActorID)
			ctx = requestcontext.WithActorName(ctx, claims.Username)
			ctx = requestcontext.WithActorRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates admin-only routes. It must run after RequireAuth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requestcontext.ActorRole(r.Context()) != "admin" {
				logger.WarnContext(r.Context(), "forbidden - admin role required",
					"actor", requestcontext.ActorName(r.Context()),
					"request_id", requestcontext.RequestID(r.Context()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"Admin role required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
