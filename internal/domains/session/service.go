package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/google/uuid"
	"github.com/looplab/fsm"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidSessionState = errors.New("invalid session state")
	ErrSessionNotRecording = errors.New("session not recording")
)

// SessionService is the single writer of session state and of the
// confirmed-batch log. Everything else reads through it.
type SessionService interface {
	Start(ctx context.Context) (uuid.UUID, error)
	Pause(ctx context.Context, id uuid.UUID) error
	Resume(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID) error
	State(ctx context.Context, id uuid.UUID) (types.SessionState, error)
	AppendBatch(ctx context.Context, id uuid.UUID, w types.Window, textEN, textKO string) (types.ConfirmedBatch, error)
	SetLiveBuffer(ctx context.Context, id uuid.UUID, text string) error
	Snapshot(ctx context.Context, id uuid.UUID) (*types.Session, error)
	Transcript(ctx context.Context, id uuid.UUID) (string, error)
	Recent(ctx context.Context, id uuid.UUID, limit int64) ([]types.ConfirmedBatch, error)
	ReapIdle(ctx context.Context, olderThan time.Duration) []uuid.UUID
}

type sessionEntry struct {
	mu      sync.Mutex
	session types.Session
	machine *fsm.FSM
}

type sessionService struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*sessionEntry
	repo    BatchRepository
	logger  *Logger.Logger
}

func New(repo BatchRepository, logger *Logger.Logger) SessionService {
	return &sessionService{
		entries: make(map[uuid.UUID]*sessionEntry),
		repo:    repo,
		logger:  logger,
	}
}

func (s *sessionService) entry(id uuid.UUID) (*sessionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Start implements SessionService.
func (s *sessionService) Start(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()
	now := time.Now().UTC()
	e := &sessionEntry{
		session: types.Session{
			ID:             id,
			State:          types.SessionRecording,
			CreatedAt:      now,
			LastActivityAt: now,
			Batches:        make([]types.ConfirmedBatch, 0),
		},
		machine: newLifecycle(),
	}
	s.mu.Lock()
	s.entries[id] = e
	s.mu.Unlock()
	s.logger.Infof("session %s started", id)
	return id, nil
}

// Pause implements SessionService.
func (s *sessionService) Pause(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, evPause)
}

// Resume implements SessionService. The batch log and live buffer are
// left untouched.
func (s *sessionService) Resume(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, evResume)
}

// Complete implements SessionService. Terminal; data is retained for
// transcript fetch and export.
func (s *sessionService) Complete(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, evComplete)
}

func (s *sessionService) transition(ctx context.Context, id uuid.UUID, event string) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fire(ctx, e.machine, event); err != nil {
		return fmt.Errorf("%w: %s from %s", ErrInvalidSessionState, event, e.session.State)
	}
	e.session.State = types.SessionState(e.machine.Current())
	e.session.LastActivityAt = time.Now().UTC()
	s.logger.Infof("session %s -> %s", id, e.session.State)
	return nil
}

// State implements SessionService.
func (s *sessionService) State(ctx context.Context, id uuid.UUID) (types.SessionState, error) {
	e, err := s.entry(id)
	if err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.State, nil
}

// AppendBatch implements SessionService. Sequence index equals arrival
// order; the log is never re-sorted by window time. Append is legal in
// any state so confirmations that were in flight when the session was
// paused or completed still land.
func (s *sessionService) AppendBatch(ctx context.Context, id uuid.UUID, w types.Window, textEN, textKO string) (types.ConfirmedBatch, error) {
	e, err := s.entry(id)
	if err != nil {
		return types.ConfirmedBatch{}, err
	}
	e.mu.Lock()
	b := types.ConfirmedBatch{
		T0:            w.T0,
		T1:            w.T1,
		TextEN:        textEN,
		TextKO:        textKO,
		SequenceIndex: len(e.session.Batches),
	}
	e.session.Batches = append(e.session.Batches, b)
	e.session.LiveBuffer = ""
	e.session.LastActivityAt = time.Now().UTC()
	e.mu.Unlock()

	// Durable write-through; the in-memory log stays authoritative for
	// this process.
	if err := s.repo.SaveBatch(ctx, id, b); err != nil {
		s.logger.Errorf("session %s: persist batch %d: %v", id, b.SequenceIndex, err)
	}
	return b, nil
}

// SetLiveBuffer implements SessionService.
func (s *sessionService) SetLiveBuffer(ctx context.Context, id uuid.UUID, text string) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.session.LiveBuffer = text
	e.session.LastActivityAt = time.Now().UTC()
	e.mu.Unlock()

	if err := s.repo.SaveLiveBuffer(ctx, id, text); err != nil {
		s.logger.Debugf("session %s: cache live buffer: %v", id, err)
	}
	return nil
}

// Snapshot implements SessionService. Returns a deep copy; callers
// never see later mutations.
func (s *sessionService) Snapshot(ctx context.Context, id uuid.UUID) (*types.Session, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := e.session
	cp.Batches = make([]types.ConfirmedBatch, len(e.session.Batches))
	copy(cp.Batches, e.session.Batches)
	return &cp, nil
}

// Transcript implements SessionService. Renders the confirmed log in
// receipt order.
func (s *sessionService) Transcript(ctx context.Context, id uuid.UUID) (string, error) {
	snap, err := s.Snapshot(ctx, id)
	if err != nil {
		return "", err
	}
	return RenderTXT(snap.Batches), nil
}

// Recent implements SessionService. Serves the repository's hot window
// so a viewer that reconnects mid-session can recover the confirmed
// batches it missed before resuming the live stream.
func (s *sessionService) Recent(ctx context.Context, id uuid.UUID, limit int64) ([]types.ConfirmedBatch, error) {
	if _, err := s.entry(id); err != nil {
		return nil, err
	}
	batches, err := s.repo.RecentBatches(ctx, id, limit)
	if err != nil {
		s.logger.Errorf("session %s: recent batches: %v", id, err)
		return nil, err
	}
	return batches, nil
}

// ReapIdle implements SessionService. Drops every session with no
// activity since olderThan ago and returns the reaped ids so
// collaborators can release their per-session state too.
func (s *sessionService) ReapIdle(ctx context.Context, olderThan time.Duration) []uuid.UUID {
	cutoff := time.Now().UTC().Add(-olderThan)
	var reaped []uuid.UUID
	s.mu.Lock()
	for id, e := range s.entries {
		e.mu.Lock()
		idle := !e.session.LastActivityAt.After(cutoff)
		e.mu.Unlock()
		if idle {
			delete(s.entries, id)
			reaped = append(reaped, id)
		}
	}
	s.mu.Unlock()
	for _, id := range reaped {
		s.logger.Infof("session %s reaped after %s idle", id, olderThan)
	}
	return reaped
}

// RenderTXT renders the confirmed log as the plain-text transcript.
func RenderTXT(batches []types.ConfirmedBatch) string {
	var lines []string
	for i, b := range batches {
		lines = append(lines, fmt.Sprintf("[%d] (%.2f–%.2fs)", i+1, b.T0, b.T1))
		lines = append(lines, "EN: "+b.TextEN)
		if b.TextKO != "" {
			lines = append(lines, "KO: "+b.TextKO)
		}
		lines = append(lines, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
