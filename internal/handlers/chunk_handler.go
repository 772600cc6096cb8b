package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/captionrelay/captionrelay/internal/domains/ingest"
	"github.com/captionrelay/captionrelay/internal/domains/session"
	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/gin-gonic/gin"
)

// maxChunkBytes caps one uploaded segment. Segments are time-bounded,
// so anything bigger is a client bug.
const maxChunkBytes = 16 << 20

type ChunkHandler struct {
	pipeline *ingest.Service
	logger   *Logger.Logger
}

func NewChunkHandler(pipeline *ingest.Service, logger *Logger.Logger) *ChunkHandler {
	return &ChunkHandler{pipeline: pipeline, logger: logger}
}

// Submit ingests one audio segment
// @Summary Submit an audio segment
// @Description Accepts a self-contained audio segment for a recording session; silence yields 204
// @Tags Chunk
// @Accept mpfd
// @Produce json
// @Param id path string true "Session id"
// @Param chunk formData file false "Audio segment (raw body also accepted)"
// @Success 200 {object} ChunkAcceptedResponse "Accepted"
// @Success 204 "Skipped (silence or unusable content)"
// @Failure 404 {object} RejectResponse "Unknown session"
// @Failure 409 {object} RejectResponse "SessionNotRecording"
// @Failure 422 {object} RejectResponse "Undecodable payload"
// @Failure 502 {object} RejectResponse "Engine failure"
// @Router /sessions/{id}/chunks [post]
func (h *ChunkHandler) Submit(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	payload, hint, err := readChunk(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, RejectResponse{Reason: "unreadable chunk payload"})
		return
	}
	if len(payload) == 0 {
		c.JSON(http.StatusBadRequest, RejectResponse{Reason: "empty chunk payload"})
		return
	}

	status, err := h.pipeline.Submit(c, types.AudioSegment{
		SessionID:  id,
		Bytes:      payload,
		MimeHint:   hint,
		CapturedAt: time.Now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, RejectResponse{Reason: "unknown session"})
		case errors.Is(err, session.ErrSessionNotRecording):
			c.JSON(http.StatusConflict, RejectResponse{Reason: "SessionNotRecording"})
		case errors.Is(err, ingest.ErrUndecodableAudio):
			c.JSON(http.StatusUnprocessableEntity, RejectResponse{Reason: "undecodable audio"})
		default:
			h.logger.Errorf("session %s: chunk rejected: %v", id, err)
			c.JSON(http.StatusBadGateway, RejectResponse{Reason: "speech engine failure"})
		}
		return
	}

	if status == ingest.Skipped {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, ChunkAcceptedResponse{Status: "accepted"})
}

// readChunk accepts either a multipart "chunk" file or the raw request
// body.
func readChunk(c *gin.Context) ([]byte, string, error) {
	if fh, err := c.FormFile("chunk"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		payload, err := io.ReadAll(io.LimitReader(f, maxChunkBytes))
		if err != nil {
			return nil, "", err
		}
		return payload, fh.Header.Get("Content-Type"), nil
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxChunkBytes))
	if err != nil {
		return nil, "", err
	}
	return payload, c.ContentType(), nil
}
