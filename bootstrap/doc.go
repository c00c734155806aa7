// Package bootstrap runs the service lifecycle: validate config, init the
// logger, start components in order, wire handlers, wait for SIGINT or
// SIGTERM, then stop components in reverse within a graceful timeout.
package bootstrap
