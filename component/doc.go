// Package component defines lifecycle-managed parts of the service.
//
// A Component starts once, stops once and reports its health. The Registry
// starts components in registration order and stops them in reverse, so
// the inference backend is up before the HTTP server accepts requests and
// outlives it during shutdown.
package component
