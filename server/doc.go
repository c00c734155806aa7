// Package server provides the HTTP server: a Gin engine served over
// HTTP/1.1 and h2c, wrapped in a fixed middleware stack and managed as a
// lifecycle component.
//
// # Middleware
//
// Applied outermost first (server/middleware):
//
//   - Recovery: panic to 500 error envelope, stack logged
//   - RequestID: X-Request-Id propagation, id stored for request loggers
//   - RequestLogger: one line per request with status and duration
//   - CORS: trusted-origin allowlist, credentials, reflected preflight
//   - BodySizeLimit: caps upload size
//
// # Endpoints
//
// Registered by RegisterDefaultEndpoints (server/endpoint):
//
//   - GET /health: component health aggregation, 503 when any is unhealthy
//   - GET /info: service, build, uptime, and backend details
//
// Handlers report failures through RespondWithError, which writes the
// {"message", "code"} envelope with the AppError's status.
package server
