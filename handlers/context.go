package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/workflow"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// contextKey is unexported so no other package can collide with it.
type contextKey string

// UserContextKey carries the authenticated *models.User, set by the auth middleware.
const UserContextKey contextKey = "user"

// currentUser reads the authenticated user, answering 401 when it is missing.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return nil, false
	}
	return user, true
}

// decodeJSON decodes the body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// paging reads ?limit= and ?offset=. Unparsable values fall back to 0 and
// the services apply their defaults.
func paging(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}

// requestFilter reads ?status=&from=&to=&limit=&offset= for request listings.
func requestFilter(r *http.Request) models.RequestFilter {
	q := r.URL.Query()
	limit, offset := paging(r)
	return models.RequestFilter{
		Status: workflow.Status(q.Get("status")),
		From:   q.Get("from"),
		To:     q.Get("to"),
		Limit:  limit,
		Offset: offset,
	}
}
