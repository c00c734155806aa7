// Package observability exports whisperd traces and metrics over OTLP/HTTP.
//
// Every request gets a "whisperd.request" span with one child span per
// pipeline stage (upload, decode, segment, inference):
//
//	ctx, end := observability.StartStage(ctx, "decode")
//	clip, err := audio.Decode(path)
//	end(err)
//
// Metrics counts requests, inference calls, gate waits, segments and
// errors. Its methods accept a nil receiver. Component installs both
// providers at startup and hands out no-op instruments when exporting is
// disabled.
package observability
