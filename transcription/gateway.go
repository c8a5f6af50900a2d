package transcription

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/skillsenselab/voicenotes/logger"
)

// ResultKind tags the outcome of a Gateway call.
type ResultKind int

const (
	// ResultSuccess means Text holds the transcript.
	ResultSuccess ResultKind = iota
	// ResultFileError means the audio file was missing or unreadable.
	ResultFileError
	// ResultFormatError means the provider response was malformed.
	ResultFormatError
	// ResultRuntimeError means the provider or transport failed.
	ResultRuntimeError
	// ResultIndexError means the provider response was missing expected
	// list elements.
	ResultIndexError
)

// Result is the tagged outcome of one transcription attempt. A failed
// attempt still yields a usable Result: String() flattens the failure into
// a diagnostic string that the pipeline persists in place of a transcript.
type Result struct {
	Kind ResultKind
	Text string
	Err  error
}

// OK reports whether the result carries a real transcript.
func (r Result) OK() bool { return r.Kind == ResultSuccess }

// String flattens the result to the transcript text on success, or to a
// tagged diagnostic string on failure.
func (r Result) String() string {
	switch r.Kind {
	case ResultSuccess:
		return r.Text
	case ResultFileError:
		return fmt.Sprintf("File operation error: %v", r.Err)
	case ResultFormatError:
		return fmt.Sprintf("API response format error: %v", r.Err)
	case ResultIndexError:
		return fmt.Sprintf("index error: %v", r.Err)
	default:
		return fmt.Sprintf("runtime error: %v", r.Err)
	}
}

// Gateway wraps a Provider and guarantees its caller a Result, never an
// error. Each provider failure mode is classified into one tagged kind.
type Gateway struct {
	provider Provider
	log      *logger.Logger
}

// NewGateway creates a Gateway in front of the given provider.
func NewGateway(p Provider, log *logger.Logger) *Gateway {
	return &Gateway{
		provider: p,
		log:      log.WithComponent("transcription"),
	}
}

// Transcribe obtains a transcript for the audio file at path. Failures are
// classified, logged, and returned as tagged results; no error crosses this
// boundary.
func (g *Gateway) Transcribe(ctx context.Context, path string) Result {
	resp, err := g.provider.Transcribe(ctx, Request{AudioPath: path})
	if err != nil {
		res := Result{Kind: classify(err), Err: err}
		g.log.Warn("Transcription failed", map[string]interface{}{
			"audio_file": path,
			"provider":   g.provider.Name(),
			"kind":       res.Kind.label(),
			"error":      err.Error(),
		})
		return res
	}

	g.log.Info("Transcription succeeded", map[string]interface{}{
		"audio_file": path,
		"provider":   g.provider.Name(),
		"chars":      len(resp.Text),
	})
	return Result{Kind: ResultSuccess, Text: resp.Text}
}

func classify(err error) ResultKind {
	var pathErr *os.PathError
	switch {
	case errors.As(err, &pathErr), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ResultFileError
	case errors.Is(err, ErrResponseIndex):
		return ResultIndexError
	case errors.Is(err, ErrResponseFormat):
		return ResultFormatError
	default:
		return ResultRuntimeError
	}
}

func (k ResultKind) label() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultFileError:
		return "file_error"
	case ResultFormatError:
		return "format_error"
	case ResultIndexError:
		return "index_error"
	default:
		return "runtime_error"
	}
}
