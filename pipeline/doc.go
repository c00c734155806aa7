// Package pipeline runs one transcription request end to end.
//
// A Transcriber owns no long-lived state beyond its collaborators. Each call
// to Process creates a private working directory, buffers the upload into
// it, decodes and segments the audio, and hands the clip to the inference
// dispatcher only when at least one speech segment was found. The working
// directory is removed on every return path.
//
// Stages, each traced as its own span:
//
//	upload -> decode -> segment -> inference
//
// Errors are AppErrors tagged with the failing stage under the "stage" detail.
package pipeline
