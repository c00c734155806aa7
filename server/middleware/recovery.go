package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/kbukum/whisperd/errors"
	"github.com/kbukum/whisperd/logger"
)

var panicBody, _ = json.Marshal(apperrors.ErrorResponse{
	Message: "Internal server error",
	Code:    apperrors.ErrCodeInternal,
})

// Recovery logs a handler panic with its stack and answers 500 with the
// error envelope. http.ErrAbortHandler is re-raised.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				switch v {
				case nil:
					return
				case http.ErrAbortHandler:
					panic(v)
				}
				log.WithContext(r.Context()).Error("panic", logger.Fields(
					logger.FieldError, fmt.Sprint(v),
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write(panicBody)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
