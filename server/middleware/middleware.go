// Package middleware holds the net/http wrappers that run in front of the
// Gin engine: request ids, panic recovery, CORS, body limits and access logs.
package middleware

import "net/http"

// Middleware decorates a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws so that mws[0] sees the request first.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := range mws {
			h = mws[len(mws)-1-i](h)
		}
		return h
	}
}

// recorder remembers the response status and how many body bytes went out.
type recorder struct {
	http.ResponseWriter
	code  int
	bytes int64
	sent  bool
}

func record(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w, code: http.StatusOK}
}

func (r *recorder) WriteHeader(code int) {
	if !r.sent {
		r.code, r.sent = code, true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(p []byte) (int, error) {
	r.sent = true
	n, err := r.ResponseWriter.Write(p)
	r.bytes += int64(n)
	return n, err
}

// Flush forwards to the wrapped writer when it can flush.
func (r *recorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (r *recorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
