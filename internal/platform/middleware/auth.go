package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"tranchor/internal/platform/auth"
	id "tranchor/pkg/domain"
	"tranchor/pkg/requestcontext"
)

// TokenValidator is the subset of the auth service the middleware needs.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

func unauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}

// RequireAuth validates the bearer token and injects the participant identity
// into the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(validator, logger, "")
}

// RequireAdmin validates the bearer token and additionally requires the admin
// role. Issuance, tranche definition, assignment, and lifecycle routes sit
// behind this.
func RequireAdmin(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(validator, logger, auth.RoleAdmin)
}

func requireRole(validator TokenValidator, logger *slog.Logger, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w, "Invalid or expired token")
				return
			}

			if role != "" && claims.Role != role {
				logger.WarnContext(ctx, "forbidden access - insufficient role",
					"role", claims.Role,
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden"}`))
				return
			}

			ctx = requestcontext.WithParticipantID(ctx, id.ParticipantID(claims.Participant))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
