package transcription

import (
	"context"
	"errors"
)

// Provider is the interface that transcription backends must implement.
type Provider interface {
	// Name returns the backend's registered name.
	Name() string

	// IsAvailable reports whether the backend is usable (configured and
	// reachable enough to attempt a call).
	IsAvailable(ctx context.Context) bool

	// Transcribe sends audio for transcription and returns the result.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}

// Classification sentinels. Backends wrap these so the Gateway can map
// provider failures onto its tagged result kinds without knowing backend
// internals.
var (
	// ErrResponseFormat marks a provider response that could not be decoded
	// or was missing an expected field.
	ErrResponseFormat = errors.New("transcription: malformed provider response")

	// ErrResponseIndex marks a provider response missing expected list
	// elements (no channels, no alternatives).
	ErrResponseIndex = errors.New("transcription: provider response missing expected elements")
)
