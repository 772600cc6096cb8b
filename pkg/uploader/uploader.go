package uploader

import (
	"context"
	"sync"

	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/captionrelay/captionrelay/pkg/capture"
)

// ChunkStatus is the server's acknowledgment of one segment.
type ChunkStatus int

const (
	ChunkAccepted ChunkStatus = iota
	ChunkSkipped
)

// Poster is the transport the coordinator uploads through.
type Poster interface {
	SubmitChunk(ctx context.Context, sessionID string, wav []byte) (ChunkStatus, error)
}

// Coordinator serializes the relationship between "segment produced"
// and "lifecycle transition requested". Every upload joins the pending
// set; Settle resolves once the set is empty, so pause/complete can
// guarantee no segment is attributed to the wrong lifecycle phase.
type Coordinator struct {
	poster    Poster
	sessionID string
	logger    *Logger.Logger
	barrier   Barrier

	mu       sync.Mutex
	accepted int
	skipped  int
	failed   int
}

func NewCoordinator(poster Poster, sessionID string, logger *Logger.Logger) *Coordinator {
	return &Coordinator{
		poster:    poster,
		sessionID: sessionID,
		logger:    logger,
	}
}

// Enqueue issues the segment's upload without blocking the capture
// loop. Content/format rejections are logged and the session
// continues; a missed segment is an acceptable gap, not a corruption.
func (c *Coordinator) Enqueue(ctx context.Context, seg capture.Segment) {
	c.barrier.Add()
	go func() {
		defer c.barrier.Done()
		status, err := c.poster.SubmitChunk(ctx, c.sessionID, seg.WAV)
		c.mu.Lock()
		defer c.mu.Unlock()
		switch {
		case err != nil:
			c.failed++
			c.logger.Warnf("session %s: segment upload failed: %v", c.sessionID, err)
		case status == ChunkSkipped:
			c.skipped++
		default:
			c.accepted++
		}
	}()
}

// Settle is the completion barrier. pause and complete MUST call it
// before issuing their lifecycle request; resume and ongoing recording
// never wait on it.
func (c *Coordinator) Settle(ctx context.Context) error {
	return c.barrier.Wait(ctx)
}

// Stats reports acknowledged upload counts so far.
func (c *Coordinator) Stats() (accepted, skipped, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accepted, c.skipped, c.failed
}
