package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records-api/internal/utils/response"
)

// ErrInternal is what the client sees when a handler panics.
var ErrInternal = errors.New("internal server error")

// Recover turns a panicking handler into a 500 response so that one bad
// request never takes the process down.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// net/http uses this sentinel to abort a response on purpose.
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			slog.Error("panic while serving request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("panic", fmt.Sprint(rec)))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(ErrInternal))
		}()

		next.ServeHTTP(w, r)
	})
}
