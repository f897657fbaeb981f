package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"binder/internal/httputil"
)

// Recovery turns a handler panic into a 500 problem response.
// A response that has already started cannot be replaced, so it is only logged.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				// net/http uses this panic to abort a response on purpose
				if v == http.ErrAbortHandler {
					panic(v)
				}

				attrs := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"panic", fmt.Sprint(v),
					"response_started", rec.started,
					"stack", string(debug.Stack()),
				}
				logger.Error("handler panicked", attrs...)

				if !rec.started {
					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
