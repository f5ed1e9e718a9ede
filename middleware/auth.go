// Package middleware holds the func(next http.Handler) http.Handler layers
// every request passes through before it reaches a handler.
//
// Order, outermost first: Recover → AccessLog → CORS → mux → Auth →
// RequirePerm → handler. A middleware that rejects the request writes the
// error envelope and does not call next.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/akinalp/workdesk/handlers"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/repository"
	"github.com/akinalp/workdesk/services"
)

// AuthMiddleware validates the bearer access token.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repository.UserRepository
}

func NewAuthMiddleware(authService services.AuthService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
	}
}

// Require rejects requests without a valid "Authorization: Bearer <token>"
// header. The user is reloaded from the database on every request so a
// deactivation or role change takes effect before the token expires.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		user, err := m.userRepo.GetByID(r.Context(), claims.UserID)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
			return
		}
		if !user.IsActive {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "account is deactivated")
			return
		}
		user.PasswordHash = ""

		if info := requestInfoFrom(r.Context()); info != nil {
			info.userID = user.ID
		}

		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
