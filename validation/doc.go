// Package validation checks struct tags on whisperd configuration and on
// the JSON documents produced by inference backends. Failures come back as
// a single INVALID_INPUT AppError listing every offending field by its json
// or mapstructure name.
//
//	type cppOutput struct {
//	    Transcription []cppSegment `json:"transcription" validate:"required,min=1"`
//	}
//	err := validation.Validate(out)
package validation
