// Package transcription defines the provider interface for speech-to-text
// backends and the Gateway that normalizes their heterogeneous failures into
// a single tagged result.
//
// Providers return (*Response, error) like any Go API. The Gateway sits in
// front of a provider and converts every failure into one of four tagged
// result kinds, so the ingestion pipeline can persist a human-diagnosable
// transcript field even when transcription fails.
//
// # Backends
//
//   - transcription/deepgram: Deepgram prerecorded speech-to-text
package transcription
