package middleware

import (
	"net/http"

	"github.com/kbukum/whisperd/util"
)

// DefaultMaxBodySize applies when the configured limit is empty or unparsable.
const DefaultMaxBodySize int64 = 100 << 20

// BodySizeLimit caps request bodies at limit, written as "512KB" or "1GB".
// Reading beyond it yields *http.MaxBytesError, which the upload handler
// maps to 413.
func BodySizeLimit(limit string) Middleware {
	n := util.ParseSize(limit, DefaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
