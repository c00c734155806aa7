package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/whisperd/logger"
)

// slowRequest marks access log entries worth a second look. Transcriptions
// routinely take seconds, so the bar is high.
const slowRequest = 30 * time.Second

// unlogged are polled by orchestrators.
var unlogged = map[string]struct{}{
	"/health": {},
	"/info":   {},
}

// RequestLogger writes one access log entry per request. 5xx responses log
// at error level and 4xx at warn.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := unlogged[r.URL.Path]; skip {
				next.ServeHTTP(w, r)
				return
			}

			began := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)
			took := time.Since(began)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				logger.FieldStatus, rec.code,
				"bytes", rec.bytes,
				logger.FieldDuration, took.Milliseconds(),
			)
			if took > slowRequest {
				fields["slow"] = true
			}
			entry := log.WithContext(r.Context())
			switch {
			case rec.code >= http.StatusInternalServerError:
				entry.Error("request", fields)
			case rec.code >= http.StatusBadRequest:
				entry.Warn("request", fields)
			default:
				entry.Info("request", fields)
			}
		})
	}
}
