package middleware

import (
	"net/http"
	"slices"
	"strconv"
)

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	// AllowedOrigins lists trusted origins. "*" trusts any origin; with
	// credentials on, the caller's origin is echoed back instead of "*".
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials" mapstructure:"allow_credentials"`
	// MaxAge is how long, in seconds, browsers may cache a preflight result.
	MaxAge int `yaml:"max_age" mapstructure:"max_age"`
}

// Allows reports whether origin is trusted.
func (c CORSConfig) Allows(origin string) bool {
	return origin != "" && (slices.Contains(c.AllowedOrigins, origin) || slices.Contains(c.AllowedOrigins, "*"))
}

// CORS returns middleware that admits trusted origins with every method and
// header they ask for. Preflight requests are answered directly with 204.
func CORS(cfg CORSConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			h := w.Header()
			if origin != "" {
				h.Add("Vary", "Origin")
			}
			if cfg.Allows(origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				if preflight {
					h.Set("Access-Control-Allow-Methods", r.Header.Get("Access-Control-Request-Method"))
					if hdrs := r.Header.Get("Access-Control-Request-Headers"); hdrs != "" {
						h.Set("Access-Control-Allow-Headers", hdrs)
					}
					if cfg.MaxAge > 0 {
						h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
					}
				} else {
					h.Set("Access-Control-Expose-Headers", HeaderRequestID)
				}
			}
			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
