package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/workdesk/pkg"
)

// Recover turns a panicking handler into a 500 instead of a dropped
// connection. http.ErrAbortHandler is re-raised, net/http uses it on purpose.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rv := recover()
			if rv == nil {
				return
			}
			if rv == http.ErrAbortHandler {
				panic(rv)
			}
			log.Error().
				Str("component", "http").
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Interface("panic", rv).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			pkg.ErrorWithMessage(w, http.StatusInternalServerError, pkg.ErrInternal.Error())
		}()

		next.ServeHTTP(w, r)
	})
}
