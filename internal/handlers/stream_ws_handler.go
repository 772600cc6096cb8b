package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/captionrelay/captionrelay/internal/domains/broadcast"
	"github.com/captionrelay/captionrelay/internal/domains/ingest"
	"github.com/captionrelay/captionrelay/internal/domains/session"
	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // dev-only
}

// wsControl frames sent alongside the event stream.
type wsInitMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

type wsErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StreamWSHandler is the combined websocket transport: binary frames
// are audio segments, and the same en_partial/ko_batch events the SSE
// stream carries are pushed back over the socket.
type StreamWSHandler struct {
	sessions    session.SessionService
	pipeline    *ingest.Service
	broadcaster *broadcast.Broadcaster
	logger      *Logger.Logger
}

func NewStreamWSHandler(
	sessions session.SessionService,
	pipeline *ingest.Service,
	broadcaster *broadcast.Broadcaster,
	logger *Logger.Logger,
) *StreamWSHandler {
	return &StreamWSHandler{
		sessions:    sessions,
		pipeline:    pipeline,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (h *StreamWSHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id, err := h.resolveSession(c)
	if err != nil {
		conn.WriteJSON(wsErrorMessage{Type: "error", Message: err.Error()})
		return
	}

	var writeMu sync.Mutex
	writeJSON := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	if err := writeJSON(wsInitMessage{Type: "init", SessionID: id.String()}); err != nil {
		return
	}

	// Push side: this socket becomes the session's subscriber.
	sub, cancel := h.broadcaster.Subscribe(id)
	defer cancel()
	pushDone := make(chan struct{})
	go func() {
		defer close(pushDone)
		for {
			select {
			case ev, open := <-sub.C:
				if !open {
					return
				}
				if err := writeJSON(ev); err != nil {
					return
				}
			case <-sub.Done:
				return
			}
		}
	}()

	// Pull side: every binary frame is one self-contained segment.
	for {
		messageType, msgBytes, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.BinaryMessage {
			h.logger.Debugf("session %s: ignoring ws message type %d", id, messageType)
			continue
		}

		status, err := h.pipeline.Submit(c, types.AudioSegment{
			SessionID:  id,
			Bytes:      msgBytes,
			CapturedAt: time.Now(),
		})
		if err != nil {
			if errors.Is(err, session.ErrSessionNotRecording) {
				writeJSON(wsErrorMessage{Type: "error", Message: "SessionNotRecording"})
				break
			}
			h.logger.Warnf("session %s: ws chunk: %v", id, err)
			writeJSON(wsErrorMessage{Type: "error", Message: err.Error()})
			continue
		}
		_ = status // skips are silent on this transport
	}

	// Disconnect flushes the pending window so trailing speech is not
	// lost; the session itself stays alive for reconnection.
	flushCtx, cancelFlush := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelFlush()
	if err := h.pipeline.Flush(flushCtx, id); err != nil {
		h.logger.Errorf("session %s: ws disconnect flush: %v", id, err)
	}
	cancel()
	<-pushDone
}

// resolveSession looks up the session_id query param, starting a fresh
// session when it is absent.
func (h *StreamWSHandler) resolveSession(c *gin.Context) (uuid.UUID, error) {
	raw := c.Query("session_id")
	if raw == "" {
		return h.sessions.Start(c)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid session_id")
	}
	if _, err := h.sessions.State(c, id); err != nil {
		return uuid.Nil, errors.New("unknown session")
	}
	return id, nil
}
