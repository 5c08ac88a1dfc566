package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// internalErrorBody is the generic 500 envelope. It matches the error
// envelope shape exactly; no panic detail ever reaches the client.
const internalErrorBody = `{"status":"error","code":"INTERNAL_SERVER_ERROR","message":"An internal server error occurred. Please try again later."}`

// Recover is the outermost barrier against unanticipated faults: it
// catches panics anywhere down the chain, logs the value and stack
// server-side, and answers with the fixed JSON envelope.
//
// chi ships a Recoverer, but it writes a plain-text 500 — this service's
// contract is that every response, including the catastrophic ones, is an
// envelope.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						// The server uses this to abort in-flight writes;
						// suppressing it would break that mechanism.
						panic(rec)
					}

					logger.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(internalErrorBody))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
