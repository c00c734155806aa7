// Package resilience provides concurrency and retry primitives.
//
//   - Bulkhead: limits concurrent access to a resource. whisperd runs a
//     single-slot bulkhead as the inference gate so at most one
//     transcription executes at a time.
//   - Retry: retries transient failures with exponential backoff, used
//     while waiting for the local Whisper runtime to load its model.
//
//	gate := resilience.NewBulkhead(resilience.DefaultBulkheadConfig("inference"))
//	if err := gate.Acquire(ctx); err != nil {
//	    return err
//	}
//	defer gate.Release()
package resilience
