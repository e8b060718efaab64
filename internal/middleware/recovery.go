package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer turns a handler panic into a logged 500. If the handler already
// started the response, the connection is left to net/http to abort.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracked, ok := w.(*responseWriter)
			if !ok {
				tracked = wrapResponseWriter(w)
			}

			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if err, isErr := rvr.(error); isErr && errors.Is(err, http.ErrAbortHandler) {
					panic(rvr)
				}

				logger.Error("panic recovered",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
				)

				if tracked.wroteHeader {
					panic(http.ErrAbortHandler)
				}
				writeError(tracked, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
			}()

			next.ServeHTTP(tracked, r)
		})
	}
}
