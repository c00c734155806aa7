// Package logger wraps zerolog for whisperd.
//
// Entries carry the service name and, through WithContext, the request id
// set by the HTTP middleware, so every line written while handling one
// upload can be correlated. The logging section of config.yml picks the
// level, json or console format, and stdout or stderr.
//
//	log := app.Logger.WithComponent("pipeline")
//	log.WithContext(ctx).Info("segmented", logger.Fields("segments", 3))
package logger
