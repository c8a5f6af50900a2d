package store

import (
	"time"

	"github.com/skillsenselab/voicenotes/analysis"
	"github.com/skillsenselab/voicenotes/util"
)

// Placeholder values used when user-supplied metadata is absent.
const (
	DefaultTitle   = "Untitled"
	DefaultSpeaker = "Unknown"
	DefaultDate    = "N/A"
	DefaultContext = "No context provided"
)

// Entry is one persisted transcription record. Its ID is the logical audio
// file path and is immutable after creation; AudioFile duplicates it for
// query convenience. WordCount and TopWords are cached projections of
// Transcript, recomputed whenever the transcript changes.
type Entry struct {
	ID         string                   `gorm:"primaryKey" json:"id"`
	Title      string                   `json:"title"`
	Speaker    string                   `json:"speaker"`
	Date       string                   `json:"date"`
	Context    string                   `json:"context"`
	Transcript string                   `json:"transcript"`
	WordCount  int                      `json:"word_count"`
	TopWords   []analysis.WordFrequency `gorm:"serializer:json" json:"top_words"`
	AudioFile  string                   `json:"audio_file"`
	CreatedAt  time.Time                `gorm:"autoCreateTime:false" json:"created_at"`
}

// applyDefaults fills omitted metadata with placeholder values, mirrors the
// ID into AudioFile, and stamps CreatedAt with the current UTC time.
func (e *Entry) applyDefaults(now time.Time) {
	e.Title = util.Coalesce(e.Title, DefaultTitle)
	e.Speaker = util.Coalesce(e.Speaker, DefaultSpeaker)
	e.Date = util.Coalesce(e.Date, DefaultDate)
	e.Context = util.Coalesce(e.Context, DefaultContext)
	e.AudioFile = e.ID
	if e.TopWords == nil {
		e.TopWords = []analysis.WordFrequency{}
	}
	e.CreatedAt = now.UTC()
}

// Fields describes a partial update to an Entry. Nil pointers (and a nil
// TopWords slice) mean "leave unchanged"; the ID, AudioFile, and CreatedAt
// fields can never be updated.
type Fields struct {
	Title      *string
	Speaker    *string
	Date       *string
	Context    *string
	Transcript *string
	WordCount  *int
	TopWords   []analysis.WordFrequency
}

// IsEmpty reports whether the field set requests no changes at all.
func (f Fields) IsEmpty() bool {
	return f.Title == nil && f.Speaker == nil && f.Date == nil &&
		f.Context == nil && f.Transcript == nil && f.WordCount == nil &&
		f.TopWords == nil
}
