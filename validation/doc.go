// Package validation provides input validation for HTTP handlers.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection.
//
// # Struct Tag Validation
//
//	type TranscribeRequest struct {
//	    AudioFile string `json:"audio_file" validate:"required"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("audio_file", req.AudioFile).Filename("audio_file", req.AudioFile)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
