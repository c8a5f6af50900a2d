package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/skillsenselab/voicenotes/errors"
	"github.com/skillsenselab/voicenotes/logger"
)

// EntryStore implements CRUD and partial-match search over entries.
type EntryStore struct {
	db  *DB
	log *logger.Logger
}

// NewEntryStore creates an EntryStore on top of an open database handle.
func NewEntryStore(db *DB, log *logger.Logger) *EntryStore {
	return &EntryStore{
		db:  db,
		log: log.WithComponent("entry_store"),
	}
}

// Query is a per-field partial-match search. Supplied fields are combined
// with logical AND; each performs a case-insensitive substring match.
type Query struct {
	ID      string
	Title   string
	Speaker string
}

// Create persists a new entry. The ID must be non-empty and not already in
// use; omitted metadata fields receive their placeholder defaults and
// CreatedAt is stamped with the current UTC time. A duplicate-key rejection
// from the database maps to an AlreadyExists error.
func (s *EntryStore) Create(ctx context.Context, entry *Entry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return apperrors.InvalidInput("id", "entry id must not be empty")
	}
	entry.applyDefaults(time.Now())

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return FromDatabase(err, "entry")
	}

	s.log.Info("Entry created", map[string]interface{}{
		logger.FieldEntryID: entry.ID,
	})
	return nil
}

// Get fetches one entry by its exact ID.
func (s *EntryStore) Get(ctx context.Context, id string) (*Entry, error) {
	var entry Entry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("entry", id)
		}
		return nil, FromDatabase(err, "entry")
	}
	return &entry, nil
}

// Delete removes the entry with the given ID. It returns true only if an
// entry existed and was removed; deletion is unconditional, with no
// soft-delete or history.
func (s *EntryStore) Delete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&Entry{}, "id = ?", id)
	if res.Error != nil {
		return false, FromDatabase(res.Error, "entry")
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	s.log.Info("Entry deleted", map[string]interface{}{
		logger.FieldEntryID: id,
	})
	return true, nil
}

// Update applies a partial field update to an existing entry. It returns
// true only if at least one field actually changed: an empty field set, a
// missing entry, or new values equal to the stored ones all yield false.
// This is stricter than a matched-row upsert on purpose.
func (s *EntryStore) Update(ctx context.Context, id string, fields Fields) (bool, error) {
	if fields.IsEmpty() {
		return false, nil
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}

	updates, err := changedColumns(existing, fields)
	if err != nil {
		return false, apperrors.Internal(err)
	}
	if len(updates) == 0 {
		return false, nil
	}

	res := s.db.WithContext(ctx).Model(&Entry{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, FromDatabase(res.Error, "entry")
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	s.log.Info("Entry updated", map[string]interface{}{
		logger.FieldEntryID: id,
		"fields":            len(updates),
	})
	return true, nil
}

// changedColumns builds the column map for fields whose new value differs
// from the stored one. TopWords is serialized here: GORM field serializers
// do not run for map-based updates, so the JSON column value must be built
// before it reaches the driver.
func changedColumns(existing *Entry, fields Fields) (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	if fields.Title != nil && *fields.Title != existing.Title {
		updates["title"] = *fields.Title
	}
	if fields.Speaker != nil && *fields.Speaker != existing.Speaker {
		updates["speaker"] = *fields.Speaker
	}
	if fields.Date != nil && *fields.Date != existing.Date {
		updates["date"] = *fields.Date
	}
	if fields.Context != nil && *fields.Context != existing.Context {
		updates["context"] = *fields.Context
	}
	if fields.Transcript != nil && *fields.Transcript != existing.Transcript {
		updates["transcript"] = *fields.Transcript
	}
	if fields.WordCount != nil && *fields.WordCount != existing.WordCount {
		updates["word_count"] = *fields.WordCount
	}
	if fields.TopWords != nil && !reflect.DeepEqual(fields.TopWords, existing.TopWords) {
		serialized, err := json.Marshal(fields.TopWords)
		if err != nil {
			return nil, fmt.Errorf("serializing top words: %w", err)
		}
		updates["top_words"] = string(serialized)
	}
	return updates, nil
}

// Search returns entries matching all supplied patterns. An empty result
// slice means "nothing matched"; there is no distinct sentinel for it.
func (s *EntryStore) Search(ctx context.Context, q Query) ([]Entry, error) {
	tx := s.db.WithContext(ctx).Model(&Entry{})
	if q.ID != "" {
		tx = tx.Where(`LOWER(id) LIKE ? ESCAPE '\'`, likePattern(q.ID))
	}
	if q.Title != "" {
		tx = tx.Where(`LOWER(title) LIKE ? ESCAPE '\'`, likePattern(q.Title))
	}
	if q.Speaker != "" {
		tx = tx.Where(`LOWER(speaker) LIKE ? ESCAPE '\'`, likePattern(q.Speaker))
	}

	var entries []Entry
	if err := tx.Find(&entries).Error; err != nil {
		return nil, FromDatabase(err, "entry")
	}
	return entries, nil
}

// List returns all entries newest-first. A non-empty keyword restricts the
// result to entries whose title, speaker, or date contains it,
// case-insensitively.
func (s *EntryStore) List(ctx context.Context, keyword string) ([]Entry, error) {
	tx := s.db.WithContext(ctx).Model(&Entry{}).Order("created_at DESC")
	if keyword != "" {
		p := likePattern(keyword)
		tx = tx.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(speaker) LIKE ? ESCAPE '\' OR LOWER(date) LIKE ? ESCAPE '\'`, p, p, p)
	}

	var entries []Entry
	if err := tx.Find(&entries).Error; err != nil {
		return nil, FromDatabase(err, "entry")
	}
	return entries, nil
}

// likeEscaper neutralizes LIKE metacharacters in user-supplied search text;
// the queries above declare backslash as the escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
