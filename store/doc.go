// Package store persists transcription entries and implements CRUD and
// partial-match search over them, backed by GORM with SQLite.
//
// The unique-id invariant on create is arbitrated by the database's primary
// key constraint, not by application logic: two racing creates may both pass
// an application-level existence check, so a duplicate-key rejection from
// the database is treated as the expected "already exists" outcome.
package store
