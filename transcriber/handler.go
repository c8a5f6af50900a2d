// Package transcriber hosts the ingestion service's HTTP routes. Its single
// operation accepts an audio file reference and drives the ingest pipeline.
package transcriber

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/voicenotes/errors"
	"github.com/skillsenselab/voicenotes/ingest"
	"github.com/skillsenselab/voicenotes/logger"
	"github.com/skillsenselab/voicenotes/server"
	"github.com/skillsenselab/voicenotes/validation"
)

// TranscribeRequest is the body of POST /transcripts.
type TranscribeRequest struct {
	AudioFilePath string `json:"audio_file_path"`
}

// TranscribeResponse is the success body of POST /transcripts.
type TranscribeResponse struct {
	Message    string `json:"message"`
	Transcript string `json:"transcript"`
}

// Handler serves the transcriber routes.
type Handler struct {
	coord *ingest.Coordinator
	log   *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(coord *ingest.Coordinator, log *logger.Logger) *Handler {
	return &Handler{
		coord: coord,
		log:   log.WithComponent("transcriber"),
	}
}

// Register mounts the transcriber routes on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/transcripts", h.Transcribe)
}

// Transcribe ingests one audio file: transcription, analysis, persistence.
// A failed transcription still succeeds here; the diagnostic string is
// persisted as the transcript.
func (h *Handler) Transcribe(c *gin.Context) {
	var req TranscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}

	v := validation.New().
		Required("audio_file_path", req.AudioFilePath).
		Filename("audio_file_path", req.AudioFilePath)
	if appErr := v.Validate(); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}

	outcome, err := h.coord.Process(c.Request.Context(), req.AudioFilePath)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	message := "transcript saved"
	if !outcome.Transcribed {
		message = "transcription failed; diagnostic saved"
	}
	c.JSON(http.StatusOK, TranscribeResponse{
		Message:    message,
		Transcript: outcome.Transcript,
	})
}
