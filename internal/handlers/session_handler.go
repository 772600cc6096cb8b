package handlers

import (
	"errors"
	"net/http"

	"github.com/captionrelay/captionrelay/internal/domains/export"
	"github.com/captionrelay/captionrelay/internal/domains/ingest"
	"github.com/captionrelay/captionrelay/internal/domains/session"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionHandler struct {
	sessions session.SessionService
	pipeline *ingest.Service
	exporter *export.Service
	logger   *Logger.Logger
}

func NewSessionHandler(
	sessions session.SessionService,
	pipeline *ingest.Service,
	exporter *export.Service,
	logger *Logger.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		pipeline: pipeline,
		exporter: exporter,
		logger:   logger,
	}
}

// parseSessionID pulls and validates the :id param; writes the error
// response itself on failure.
func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid session id",
			Details: err.Error(),
		})
		return uuid.Nil, false
	}
	return id, true
}

// Start creates a new recording session
// @Summary Start a recording session
// @Description Allocates a fresh session in the recording state and returns its id
// @Tags Session
// @Produce json
// @Success 201 {object} StartSessionResponse "New session handle"
// @Failure 500 {object} ErrorResponse "Process-level resource exhaustion"
// @Router /sessions [post]
func (h *SessionHandler) Start(c *gin.Context) {
	id, err := h.sessions.Start(c)
	if err != nil {
		h.logger.Errorf("start session: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "couldn't start session"})
		return
	}
	c.JSON(http.StatusCreated, StartSessionResponse{SessionID: id.String()})
}

// Pause pauses a recording session
// @Summary Pause a recording session
// @Description Transitions a recording session to paused; the caller must have drained in-flight uploads first
// @Tags Session
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} AckResponse
// @Failure 404 {object} ErrorResponse "Unknown session"
// @Failure 409 {object} ErrorResponse "Not in recording state"
// @Router /sessions/{id}/pause [post]
func (h *SessionHandler) Pause(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	if err := h.sessions.Pause(c, id); err != nil {
		h.writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, AckResponse{Status: "ok", State: "paused"})
}

// Resume resumes a paused session
// @Summary Resume a paused session
// @Description Transitions a paused session back to recording; batch log and live buffer are preserved
// @Tags Session
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} AckResponse
// @Failure 404 {object} ErrorResponse "Unknown session"
// @Failure 409 {object} ErrorResponse "Not in paused state"
// @Router /sessions/{id}/resume [post]
func (h *SessionHandler) Resume(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	if err := h.sessions.Resume(c, id); err != nil {
		h.writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, AckResponse{Status: "ok", State: "recording"})
}

// Complete finalizes a session
// @Summary Complete a session
// @Description Terminal transition; flushes the pending confirm window and rejects all further chunks
// @Tags Session
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} AckResponse
// @Failure 404 {object} ErrorResponse "Unknown session"
// @Failure 409 {object} ErrorResponse "Already completed"
// @Router /sessions/{id}/complete [post]
func (h *SessionHandler) Complete(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	if err := h.sessions.Complete(c, id); err != nil {
		h.writeStateError(c, err)
		return
	}
	// Final flush: trailing speech below the window thresholds still
	// confirms.
	if err := h.pipeline.Flush(c, id); err != nil {
		h.logger.Errorf("session %s: final flush: %v", id, err)
	}
	h.pipeline.Forget(id)
	c.JSON(http.StatusOK, AckResponse{Status: "ok", State: "completed"})
}

// Transcript fetches the confirmed transcript snapshot
// @Summary Fetch the transcript
// @Description Pull-based snapshot of confirmed content, independent of the push stream
// @Tags Session
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} TranscriptResponse
// @Failure 404 {object} ErrorResponse "Unknown session"
// @Router /sessions/{id}/transcript [get]
func (h *SessionHandler) Transcript(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	transcript, err := h.sessions.Transcript(c, id)
	if err != nil {
		h.writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, TranscriptResponse{Transcript: transcript})
}

// Export converts the transcript into a downloadable document
// @Summary Export the transcript
// @Description Snapshots the transcript and returns a download URL from the document converter
// @Tags Session
// @Produce json
// @Param id path string true "Session id"
// @Param format query string false "txt | srt | docx" default(txt)
// @Success 200 {object} ExportResponse
// @Failure 400 {object} ErrorResponse "Unsupported format"
// @Failure 404 {object} ErrorResponse "Unknown session"
// @Failure 502 {object} ErrorResponse "Converter failure"
// @Router /sessions/{id}/export [get]
func (h *SessionHandler) Export(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	url, err := h.exporter.Export(c, id, c.DefaultQuery("format", "txt"))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown session"})
		case errors.Is(err, export.ErrUnsupportedFormat):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported format"})
		default:
			h.logger.Errorf("export session %s: %v", id, err)
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "document conversion failed"})
		}
		return
	}
	c.JSON(http.StatusOK, ExportResponse{DownloadURL: url})
}

func (h *SessionHandler) writeStateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown session"})
	case errors.Is(err, session.ErrInvalidSessionState):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "InvalidSessionState", Details: err.Error()})
	default:
		h.logger.Errorf("session op: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}
