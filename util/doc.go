// Package util holds the small helpers config loading and the backends
// share: defaults via Coalesce, size parsing for body limits, and string
// trimming for logs and environment values.
package util
