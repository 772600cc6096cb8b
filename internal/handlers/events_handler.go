package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/captionrelay/captionrelay/internal/domains/broadcast"
	"github.com/captionrelay/captionrelay/internal/domains/session"
	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/gin-gonic/gin"
)

type EventsHandler struct {
	sessions    session.SessionService
	broadcaster *broadcast.Broadcaster
	logger      *Logger.Logger
}

func NewEventsHandler(
	sessions session.SessionService,
	broadcaster *broadcast.Broadcaster,
	logger *Logger.Logger,
) *EventsHandler {
	return &EventsHandler{
		sessions:    sessions,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Subscribe opens the server-push event stream
// @Summary Subscribe to session events
// @Description SSE stream of en_partial and ko_batch events; a new subscriber replaces the previous one
// @Tags Events
// @Produce text/event-stream
// @Param id path string true "Session id"
// @Param replay query int false "Replay the last N confirmed batches before streaming live events"
// @Success 200 "Event stream"
// @Failure 400 {object} ErrorResponse "Bad replay count"
// @Failure 404 {object} ErrorResponse "Unknown session"
// @Router /sessions/{id}/events [get]
func (h *EventsHandler) Subscribe(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	replay, err := strconv.ParseInt(c.DefaultQuery("replay", "0"), 10, 64)
	if err != nil || replay < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "replay must be a non-negative integer"})
		return
	}
	if _, err := h.sessions.State(c, id); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown session"})
		return
	}

	sub, cancel := h.broadcaster.Subscribe(id)
	defer cancel()
	h.logger.Infof("session %s: subscriber attached", id)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// A reconnecting viewer recovers the confirmed batches it missed
	// before live delivery resumes. Replay is subscribed-first so no
	// batch can fall between the recovered window and the stream.
	if replay > 0 {
		batches, err := h.sessions.Recent(c, id, replay)
		if err != nil {
			h.logger.Errorf("session %s: replay: %v", id, err)
		}
		for _, b := range batches {
			c.SSEvent(types.EventKOBatch, types.BatchEvent(b))
		}
		c.Writer.Flush()
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, open := <-sub.C:
			if !open {
				return false
			}
			c.SSEvent(ev.Name, ev)
			return true
		case <-sub.Done:
			return false
		case <-c.Request.Context().Done():
			return false
		}
	})
	h.logger.Infof("session %s: subscriber detached", id)
}
