package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/email-builder/internal/logging"
)

// Recoverer turns a handler panic into a 500 response.
func Recoverer(log logging.Logger, exposeErrors bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error(r.Context(), "panic recovered",
					"path", r.URL.Path,
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
				)
				body := errorBody{Message: "Internal Server Error"}
				if exposeErrors {
					body.Error = fmt.Sprint(rec)
				}
				writeJSON(w, http.StatusInternalServerError, body)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
