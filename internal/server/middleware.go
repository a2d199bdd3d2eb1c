package server

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// recovery converts handler panics into 500 problem responses, logging
// the stack.
func recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						slog.Any("error", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)

					respondProblem(w, problem{
						Status: http.StatusInternalServerError,
						Detail: "internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
