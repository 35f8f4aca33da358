package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"civictrack/models"
	"civictrack/utils"
)

type contextKey string

// userContextKey carries the authenticated *models.User through the request.
const userContextKey contextKey = "user"

// UserLoader resolves a token's user id to an account. Satisfied by
// service.UserService.
type UserLoader interface {
	GetProfile(userID int64) (*models.User, error)
}

// AuthMiddleware validates JWT tokens and loads the acting user.
type AuthMiddleware struct {
	users     UserLoader
	jwtSecret []byte
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(users UserLoader, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		users:     users,
		jwtSecret: []byte(jwtSecret),
	}
}

// RequireAuth validates the bearer token, loads the account and stores it in
// the request context. Disabled accounts are rejected even with a valid token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Authorization header required")
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(w, "Invalid authorization format. Expected: Bearer <token>")
			return
		}

		userID, _, err := utils.ParseJWT(parts[1], m.jwtSecret)
		if err != nil {
			unauthorized(w, "Invalid or expired token")
			return
		}

		user, err := m.users.GetProfile(userID)
		if err != nil {
			unauthorized(w, "User not found")
			return
		}
		if !user.IsActive {
			unauthorized(w, "Account is disabled")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route to the given roles. Must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r)
			if user == nil {
				unauthorized(w, "Authentication required")
				return
			}
			if !allowed[user.Role] {
				respondError(w, http.StatusForbidden, "Forbidden", "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext returns the authenticated user, or nil outside an
// authenticated route.
func UserFromContext(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}

func unauthorized(w http.ResponseWriter, message string) {
	respondError(w, http.StatusUnauthorized, "Unauthorized", message)
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: errorType, Message: message, Code: statusCode})
}
