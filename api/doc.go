// Package api exposes the transcription pipeline over HTTP.
//
// POST /transcribe takes a multipart form whose "file" part holds the clip.
// The part is streamed straight into the pipeline; the request body is never
// buffered whole. A successful call answers 200 with the transcription result
// ({"transcription": ""} when the clip held no speech). A failure answers with
// the AppError's status and a {"message", "code"} body, after logging the full
// error server-side.
package api
