package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/captionrelay/captionrelay/internal/config"
	"github.com/captionrelay/captionrelay/internal/domains/broadcast"
	"github.com/captionrelay/captionrelay/internal/domains/session"
	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/captionrelay/captionrelay/pkg/asr"
	"github.com/captionrelay/captionrelay/pkg/transcode"
	"github.com/google/uuid"
)

var (
	// ErrUndecodableAudio is a genuine per-chunk content failure: the
	// signature was unrecognized and the transcoding fallback failed
	// too.
	ErrUndecodableAudio = errors.New("undecodable audio payload")
	// ErrEngineFailure covers recognizer/translator connectivity or
	// service errors; fatal for this chunk only.
	ErrEngineFailure = errors.New("speech engine failure")
)

// Status of an accepted submission.
type Status int

const (
	// Accepted: the chunk entered the pipeline and produced a
	// provisional fragment.
	Accepted Status = iota
	// Skipped: silence or engine-flagged unusable content; a normal
	// outcome under real microphone conditions, not an error.
	Skipped
)

// Service is the chunk ingestion pipeline: validate, recognize, emit
// provisional captions, accumulate confirm windows, translate and log
// confirmed batches.
type Service struct {
	sessions   session.SessionService
	broadcast  *broadcast.Broadcaster
	recognizer asr.Recognizer
	translator translateFunc
	normalizer transcode.Normalizer
	cfg        config.PipelineConfig
	logger     *Logger.Logger

	mu     sync.Mutex
	states map[uuid.UUID]*pipelineState
}

// translateFunc keeps the service decoupled from the translator
// factory; it matches translate.Translator.Translate.
type translateFunc interface {
	Translate(ctx context.Context, english string) (string, error)
}

// pipelineState is per-session ingestion state. Chunks for one session
// are processed under its lock so fragment seq numbers and the global
// timeline stay coherent even when uploads overlap.
type pipelineState struct {
	mu          sync.Mutex
	seq         int
	timelinePos float64
	window      *windowBuffer
}

func New(
	sessions session.SessionService,
	bc *broadcast.Broadcaster,
	recognizer asr.Recognizer,
	translator translateFunc,
	normalizer transcode.Normalizer,
	cfg config.PipelineConfig,
	logger *Logger.Logger,
) *Service {
	return &Service{
		sessions:   sessions,
		broadcast:  bc,
		recognizer: recognizer,
		translator: translator,
		normalizer: normalizer,
		cfg:        cfg,
		logger:     logger,
		states:     make(map[uuid.UUID]*pipelineState),
	}
}

func (s *Service) state(id uuid.UUID) *pipelineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[id]
	if !ok {
		st = &pipelineState{
			window: newWindowBuffer(s.cfg.MinWindowSec, s.cfg.MaxWindowSec, s.cfg.MinChars),
		}
		s.states[id] = st
	}
	return st
}

// Submit runs one audio segment through the pipeline.
//
// Returns Skipped for silence or engine-flagged unusable content.
// Errors: session.ErrSessionNotFound, session.ErrSessionNotRecording,
// ErrUndecodableAudio, ErrEngineFailure.
func (s *Service) Submit(ctx context.Context, seg types.AudioSegment) (Status, error) {
	state, err := s.sessions.State(ctx, seg.SessionID)
	if err != nil {
		return 0, err
	}
	if state != types.SessionRecording {
		return 0, fmt.Errorf("%w: session is %s", session.ErrSessionNotRecording, state)
	}

	audio := seg.Bytes
	if _, ok := sniffContainer(audio); !ok {
		// Unrecognized signature: not an outright reject, let the
		// transcoding collaborator have a go first.
		normalized, nerr := s.normalizer.Normalize(ctx, audio, seg.MimeHint)
		if nerr != nil {
			s.logger.Warnf("session %s: transcode fallback failed: %v", seg.SessionID, nerr)
			return 0, fmt.Errorf("%w: %v", ErrUndecodableAudio, nerr)
		}
		audio = normalized
	}

	tr, err := s.recognizer.Transcribe(ctx, audio)
	if err != nil {
		if errors.Is(err, asr.ErrUnusableAudio) {
			return Skipped, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrEngineFailure, err)
	}

	textEN := cleanEN(tr.Text)
	if textEN == "" {
		// Silence. Expected under real microphone conditions.
		return Skipped, nil
	}
	segT0, segT1 := tr.Bounds()

	st := s.state(seg.SessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	// Map the chunk's local timing onto the session's global timeline.
	gT0 := st.timelinePos + segT0
	gT1 := st.timelinePos + segT1
	st.timelinePos = gT1
	st.seq++

	s.broadcast.Publish(seg.SessionID, types.PartialEvent(st.seq, r2(gT0), r2(gT1), textEN))

	st.window.add(gT0, gT1, textEN)
	if err := s.sessions.SetLiveBuffer(ctx, seg.SessionID, st.window.joined()); err != nil {
		s.logger.Debugf("session %s: live buffer update: %v", seg.SessionID, err)
	}

	if st.window.ready() {
		s.confirmWindowLocked(ctx, seg.SessionID, st)
	}
	return Accepted, nil
}

// Flush finalizes the pending confirm window regardless of thresholds.
// Called on session completion so trailing speech is not withheld.
func (s *Service) Flush(ctx context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	st, ok := s.states[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.window.empty() {
		return nil
	}
	s.confirmWindowLocked(ctx, sessionID, st)
	return nil
}

// Forget drops a session's pipeline state. Called after completion.
func (s *Service) Forget(sessionID uuid.UUID) {
	s.mu.Lock()
	delete(s.states, sessionID)
	s.mu.Unlock()
}

// confirmWindowLocked translates and logs the pending window, then
// broadcasts the confirmed batch. The batch is appended to the session
// log before the push, so a reconnecting subscriber can always recover
// it from the transcript pull. Caller holds st.mu.
func (s *Service) confirmWindowLocked(ctx context.Context, sessionID uuid.UUID, st *pipelineState) {
	win, textEN := st.window.flush()
	if textEN == "" {
		return
	}

	textKO, err := s.translator.Translate(ctx, textEN)
	if err != nil {
		// The window still confirms; translation is best effort per
		// batch.
		s.logger.Errorf("session %s: translation failed: %v", sessionID, err)
		textKO = ""
	}

	batch, err := s.sessions.AppendBatch(ctx, sessionID, win, textEN, textKO)
	if err != nil {
		s.logger.Errorf("session %s: append batch: %v", sessionID, err)
		return
	}
	s.broadcast.Publish(sessionID, types.BatchEvent(batch))
}
