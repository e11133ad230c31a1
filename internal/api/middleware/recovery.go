package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/farescout/farescout/internal/api/models"
)

// Recovery converts handler panics into 500 problem responses. The
// panic value and stack go to the log; the client only sees a generic
// problem document with the request ID for correlation.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				cause := recover()
				if cause == nil {
					return
				}

				id := GetRequestID(r.Context())
				log.Error().
					Str("request_id", id).
					Str("path", r.URL.Path).
					Interface("panic", cause).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				problem := models.NewInternalError(id, "an unexpected error occurred")
				problem.Instance = r.URL.Path
				problem.Write(w)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
