// Package ingest coordinates the upload-to-persisted-record flow: locate the
// audio file, obtain a transcript through the transcription gateway, derive
// word statistics, and write the result to the entry store.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/skillsenselab/voicenotes/analysis"
	apperrors "github.com/skillsenselab/voicenotes/errors"
	"github.com/skillsenselab/voicenotes/logger"
	"github.com/skillsenselab/voicenotes/observability"
	"github.com/skillsenselab/voicenotes/store"
	"github.com/skillsenselab/voicenotes/transcription"
)

// Mode selects where audio files are resolved from.
const (
	// ModeLocal resolves audio files under the local upload directory.
	ModeLocal = "local"
	// ModeShared resolves audio files under the volume shared with the
	// web-app container.
	ModeShared = "shared"
)

// Config selects the audio directory the coordinator resolves files in.
type Config struct {
	// Mode is "local" or "shared".
	Mode string `yaml:"mode" mapstructure:"mode"`
	// LocalAudioDir is used in local mode.
	LocalAudioDir string `yaml:"local_audio_dir" mapstructure:"local_audio_dir"`
	// SharedAudioDir is used in shared mode.
	SharedAudioDir string `yaml:"shared_audio_dir" mapstructure:"shared_audio_dir"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeLocal
	}
	if c.LocalAudioDir == "" {
		c.LocalAudioDir = "uploaded_audio"
	}
	if c.SharedAudioDir == "" {
		c.SharedAudioDir = "/app/uploaded_audio"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Mode != ModeLocal && c.Mode != ModeShared {
		return fmt.Errorf("ingest.mode must be %q or %q (got: %s)", ModeLocal, ModeShared, c.Mode)
	}
	return nil
}

// AudioDir returns the directory audio files are resolved in for the
// configured mode.
func (c *Config) AudioDir() string {
	if c.Mode == ModeShared {
		return c.SharedAudioDir
	}
	return c.LocalAudioDir
}

// Outcome reports one completed ingestion.
type Outcome struct {
	// Transcript is the text persisted to the entry: the real transcript,
	// or the gateway's tagged diagnostic string when transcription failed.
	Transcript string `json:"transcript"`
	// WordCount and TopWords are the derived statistics written alongside it.
	WordCount int                      `json:"word_count"`
	TopWords  []analysis.WordFrequency `json:"top_words"`
	// Transcribed is false when the persisted transcript is a diagnostic
	// string rather than real text.
	Transcribed bool `json:"transcribed"`
	// Updated is false when the stored entry already carried identical values.
	Updated bool `json:"updated"`
}

// Coordinator runs the ingestion pipeline. Each call is an independent,
// synchronous unit of work; there are no background workers or retries.
type Coordinator struct {
	cfg     Config
	entries *store.EntryStore
	gateway *transcription.Gateway
	metrics *observability.IngestMetrics
	log     *logger.Logger
}

// NewCoordinator creates a Coordinator. The metrics instrument may be nil,
// in which case recording is a no-op.
func NewCoordinator(cfg Config, entries *store.EntryStore, gateway *transcription.Gateway,
	metrics *observability.IngestMetrics, log *logger.Logger) *Coordinator {
	cfg.ApplyDefaults()
	return &Coordinator{
		cfg:     cfg,
		entries: entries,
		gateway: gateway,
		metrics: metrics,
		log:     log.WithComponent("ingest"),
	}
}

// Process ingests one audio file reference: the file must exist under the
// configured audio directory and a matching entry must already exist in the
// store. A failed transcription is not terminal — its diagnostic string is
// persisted as the transcript so the record stays honest and inspectable.
func (c *Coordinator) Process(ctx context.Context, audioFilePath string) (*Outcome, error) {
	ctx, span := observability.StartSpan(ctx, "ingest.process")
	defer span.End()
	start := time.Now()

	// Incoming references may carry path components; only the base name is
	// meaningful, for both file resolution and entry identity.
	name := filepath.Base(audioFilePath)
	observability.SetSpanAttribute(ctx, "audio_file", name)

	fullPath := filepath.Join(c.cfg.AudioDir(), name)
	if _, err := os.Stat(fullPath); err != nil {
		c.record(ctx, "file_not_found", start)
		return nil, apperrors.NotFound("audio file", name).WithCause(err)
	}

	result := c.gateway.Transcribe(ctx, fullPath)
	transcript := result.String()
	if !result.OK() {
		// Not terminal: the tagged diagnostic string is persisted below.
		c.log.Warn("Transcription failed, persisting diagnostic string", map[string]interface{}{
			logger.FieldAudioFile: name,
			"result":              transcript,
		})
		observability.SetSpanError(ctx, result.Err)
	}

	wordCount := analysis.WordCount(transcript)
	topWords := analysis.TopWords(transcript)

	// The entry must exist already: transcript attachment is a post-upload
	// step, never a creation path.
	if _, err := c.entries.Get(ctx, name); err != nil {
		c.record(ctx, "entry_not_found", start)
		return nil, err
	}

	changed, err := c.entries.Update(ctx, name, store.Fields{
		Transcript: &transcript,
		WordCount:  &wordCount,
		TopWords:   topWords,
	})
	if err != nil {
		c.record(ctx, "persistence_failed", start)
		return nil, err
	}

	c.record(ctx, "persisted", start)
	c.log.Info("Ingestion complete", map[string]interface{}{
		logger.FieldAudioFile: name,
		"word_count":          wordCount,
		"top_words":           len(topWords),
		"transcribed":         result.OK(),
	})

	return &Outcome{
		Transcript:  transcript,
		WordCount:   wordCount,
		TopWords:    topWords,
		Transcribed: result.OK(),
		Updated:     changed,
	}, nil
}

func (c *Coordinator) record(ctx context.Context, outcome string, start time.Time) {
	c.metrics.RecordIngest(ctx, outcome, time.Since(start))
}
