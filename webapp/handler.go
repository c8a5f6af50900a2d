// Package webapp hosts the web-facing service's HTTP routes: entry listing
// and search, audio upload, and entry view/edit/delete. Responses are JSON;
// rendering is left to the frontend.
package webapp

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillsenselab/voicenotes/analysis"
	"github.com/skillsenselab/voicenotes/blobstore"
	apperrors "github.com/skillsenselab/voicenotes/errors"
	"github.com/skillsenselab/voicenotes/logger"
	"github.com/skillsenselab/voicenotes/server"
	"github.com/skillsenselab/voicenotes/store"
	"github.com/skillsenselab/voicenotes/util"
	"github.com/skillsenselab/voicenotes/validation"
)

// TranscriberClient requests ingestion of an uploaded audio file from the
// transcriber service.
type TranscriberClient interface {
	RequestTranscription(ctx context.Context, audioFile string) error
}

// Handler serves the webapp routes.
type Handler struct {
	entries     *store.EntryStore
	blobs       blobstore.Storage
	transcriber TranscriberClient
	log         *logger.Logger
}

// NewHandler creates a Handler. transcriber may be nil, in which case uploads
// are persisted without requesting transcription.
func NewHandler(entries *store.EntryStore, blobs blobstore.Storage, transcriber TranscriberClient, log *logger.Logger) *Handler {
	return &Handler{
		entries:     entries,
		blobs:       blobs,
		transcriber: transcriber,
		log:         log.WithComponent("webapp"),
	}
}

// Register mounts the webapp routes on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.List)
	r.POST("/upload", h.Upload)
	r.GET("/entries/:id", h.Show)
	r.GET("/entries/:id/edit", h.EditForm)
	r.POST("/entries/:id/edit", h.Edit)
	r.POST("/entries/:id/delete", h.Delete)
}

// List returns all entries newest first, filtered by an optional free-text
// keyword across title, speaker, and date.
func (h *Handler) List(c *gin.Context) {
	keyword := c.Query("keyword")

	entries, err := h.entries.List(c.Request.Context(), keyword)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, entries)
}

// UploadResponse is the success body of POST /upload.
type UploadResponse struct {
	Entry       *store.Entry `json:"entry"`
	Transcribed bool         `json:"transcribed"`
}

// Upload accepts a multipart audio file plus metadata, persists the blob
// under a unique timestamped name, creates the entry, and asks the
// transcriber to ingest it. The transcription call is best effort: if the
// transcriber is unreachable the entry keeps its zero-value derived fields.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		server.RespondWithError(c, apperrors.MissingField("audio"))
		return
	}

	title := util.SanitizeString(c.PostForm("title"))
	speaker := util.SanitizeString(c.PostForm("speaker"))
	date := util.SanitizeString(c.PostForm("date"))
	description := util.SanitizeString(c.PostForm("description"))

	v := validation.New().
		MaxLength("title", title, 200).
		MaxLength("speaker", speaker, 200).
		MaxLength("date", date, 40)
	if appErr := v.Validate(); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}

	storedName := uniqueFilename(fileHeader.Filename)

	src, err := fileHeader.Open()
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(fmt.Errorf("open uploaded file: %w", err)))
		return
	}
	defer func() { _ = src.Close() }()

	if err := h.blobs.Save(c.Request.Context(), storedName, src); err != nil {
		server.RespondWithError(c, apperrors.Internal(fmt.Errorf("persist uploaded file: %w", err)))
		return
	}

	entry := &store.Entry{
		ID:      storedName,
		Title:   title,
		Speaker: speaker,
		Date:    date,
		Context: description,
	}
	if err := h.entries.Create(c.Request.Context(), entry); err != nil {
		server.RespondWithError(c, err)
		return
	}

	transcribed := false
	if h.transcriber != nil {
		if err := h.transcriber.RequestTranscription(c.Request.Context(), storedName); err != nil {
			h.log.Warn("Transcription request failed, entry kept without transcript", map[string]interface{}{
				logger.FieldAudioFile: storedName,
				"error":               err.Error(),
			})
		} else {
			transcribed = true
		}
	}

	// Re-read so the response reflects transcription results when the call
	// round-tripped before we got here.
	fresh, err := h.entries.Get(c.Request.Context(), storedName)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondCreated(c, UploadResponse{Entry: fresh, Transcribed: transcribed})
}

// Show returns a single entry by id.
func (h *Handler) Show(c *gin.Context) {
	entry, err := h.entries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, entry)
}

// EditForm returns the current editable fields of an entry.
func (h *Handler) EditForm(c *gin.Context) {
	entry, err := h.entries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{
		"id":         entry.ID,
		"title":      entry.Title,
		"speaker":    entry.Speaker,
		"date":       entry.Date,
		"context":    entry.Context,
		"transcript": entry.Transcript,
	})
}

// EditRequest is the body of POST /entries/{id}/edit. Nil fields are left
// untouched.
type EditRequest struct {
	Title      *string `json:"title" validate:"omitempty,max=200"`
	Speaker    *string `json:"speaker" validate:"omitempty,max=200"`
	Date       *string `json:"date" validate:"omitempty,max=40"`
	Context    *string `json:"context"`
	Transcript *string `json:"transcript"`
}

// Edit updates an entry's metadata and transcript. When the transcript
// changes, word count and top words are recomputed from the new text.
func (h *Handler) Edit(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}
	if err := validation.Validate(&req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	fields := store.Fields{
		Title:   req.Title,
		Speaker: req.Speaker,
		Date:    req.Date,
		Context: req.Context,
	}
	if req.Transcript != nil {
		wordCount := analysis.WordCount(*req.Transcript)
		topWords := analysis.TopWords(*req.Transcript)
		fields.Transcript = req.Transcript
		fields.WordCount = &wordCount
		fields.TopWords = topWords
	}

	id := c.Param("id")
	changed, err := h.entries.Update(c.Request.Context(), id, fields)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	entry, err := h.entries.Get(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"entry": entry, "changed": changed})
}

// Delete removes an entry.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	removed, err := h.entries.Delete(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if !removed {
		server.RespondWithError(c, apperrors.NotFound("entry", id))
		return
	}
	server.RespondOK(c, gin.H{"deleted": id})
}

// uniqueFilename builds a collision-free stored name for an upload:
// UTC timestamp, short random suffix, then the sanitized original name.
func uniqueFilename(original string) string {
	return fmt.Sprintf("%s_%s_%s",
		time.Now().UTC().Format("20060102150405"),
		uuid.New().String()[:8],
		util.SanitizeFilename(original))
}
