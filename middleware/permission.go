package middleware

import (
	"net/http"

	"github.com/akinalp/workdesk/handlers"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
)

// RequirePerm lets the request through only when the authenticated user's
// role grants perm. It runs after AuthMiddleware.Require.
//
//	auth(RequirePerm(models.PermWriteEmployees, http.HandlerFunc(h.Employee.Create)))
//
// Checks that depend on the relationship to a record (is this my report,
// am I this request's approver) belong in the services.
func RequirePerm(perm models.Permission, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(handlers.UserContextKey).(*models.User)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
			return
		}

		if !user.Role.Permissions().Has(perm) {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}
